package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/viant/langprobe/corpus"
	"github.com/viant/scy/cred/secret"
	"gopkg.in/yaml.v3"
)

const (
	// ModelPathEnv overrides the language model location.
	ModelPathEnv = "LANGPROBE_MODEL_PATH"
	// LegacyModelPathEnv is read when ModelPathEnv is unset.
	LegacyModelPathEnv = "MULTILANG_PROBE_MODEL_PATH"
	// ModelURLEnv selects a fastText endpoint.
	ModelURLEnv = "LANGPROBE_MODEL_URL"
)

const (
	ModelLexicon  = "lexicon"
	ModelFastText = "fasttext"
)

// Config defines model, analysis, storage and corpus settings.
type Config struct {
	Model     ModelConfig             `yaml:"model"`
	Analysis  corpus.Config           `yaml:"analysis"`
	Cache     CacheConfig             `yaml:"cache"`
	Store     StoreConfig             `yaml:"store"`
	Corpora   map[string]CorpusConfig `yaml:"corpora"`
	MCPServer MCPServerConfig         `yaml:"mcpServer"`
}

// ModelConfig selects the language identification model.
type ModelConfig struct {
	// Kind is lexicon or fasttext; empty selects fasttext when URL is set.
	Kind string `yaml:"kind"`
	// Path is the lexicon YAML location (any afs URL).
	Path string `yaml:"path"`
	// URL is the fastText endpoint base URL.
	URL       string `yaml:"url"`
	Name      string `yaml:"name"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

// CacheConfig defines the result cache snapshot location.
type CacheConfig struct {
	URL string `yaml:"url"`
}

// StoreConfig defines run store settings.
type StoreConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
	Secret string `yaml:"secret,omitempty"`
}

// CorpusConfig defines a named corpus root.
type CorpusConfig struct {
	Path        string   `yaml:"path"`
	Description string   `yaml:"description"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MaxFileSize int      `yaml:"maxFileSize"`
}

// MCPServerConfig defines MCP server settings.
type MCPServerConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

// LoadConfig reads a YAML config. A .env file next to it is loaded first.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	if err := LoadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML config data and expands paths and secrets.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.expand(context.Background()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expand(ctx context.Context) error {
	var err error
	if c.Model.Path, err = expandUserPath(c.Model.Path); err != nil {
		return err
	}
	if c.Cache.URL, err = expandUserPath(c.Cache.URL); err != nil {
		return err
	}
	if c.Store.DSN != "" {
		if c.Store.DSN, err = expandStoreDSN(c.Store.DSN, c.Store.Driver); err != nil {
			return err
		}
	}
	if c.Store.Secret != "" {
		if c.Store.DSN, err = ExpandDSNWithSecret(ctx, c.Store.DSN, c.Store.Secret); err != nil {
			return err
		}
	}
	for name, root := range c.Corpora {
		if root.Path == "" {
			continue
		}
		if root.Path, err = expandUserPath(root.Path); err != nil {
			return err
		}
		c.Corpora[name] = root
	}
	return nil
}

// ApplyEnv fills model settings from the environment when they are not configured.
func (c *ModelConfig) ApplyEnv() {
	if c.Path == "" {
		c.Path = os.Getenv(ModelPathEnv)
	}
	if c.Path == "" {
		c.Path = os.Getenv(LegacyModelPathEnv)
	}
	if c.URL == "" {
		c.URL = os.Getenv(ModelURLEnv)
	}
	c.Path, _ = expandUserPath(c.Path)
}

// LoadEnv loads dotenv files that exist; missing files are ignored.
// Variables already set in the environment are kept.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		p, err := expandUserPath(p)
		if err != nil {
			return err
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %v: %w", p, err)
		}
	}
	return nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return path, nil
	}
	if trimmed[0] != '~' && !strings.HasPrefix(trimmed, "file:") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(trimmed, "file:") {
		prefix := "file://localhost"
		rest := strings.TrimPrefix(trimmed, prefix)
		if rest == trimmed {
			prefix = "file://"
			rest = strings.TrimPrefix(trimmed, prefix)
		}
		if rest == trimmed {
			prefix = "file:"
			rest = strings.TrimPrefix(trimmed, prefix)
		}
		rest = strings.TrimLeft(rest, "/")
		if !strings.HasPrefix(rest, "~") {
			return path, nil
		}
		absSlash := filepath.ToSlash(filepath.Join(home, strings.TrimPrefix(rest, "~")))
		if prefix == "file:" {
			if !strings.HasPrefix(absSlash, "/") {
				absSlash = "/" + absSlash
			}
			return prefix + absSlash, nil
		}
		return prefix + "/" + strings.TrimLeft(absSlash, "/"), nil
	}
	if trimmed != "~" && !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	if trimmed == "~" {
		return home, nil
	}
	return filepath.Join(home, trimmed[2:]), nil
}

func expandStoreDSN(dsn, driver string) (string, error) {
	if dsn == "" {
		return dsn, nil
	}
	if driver == "sqlite" || dsn[0] == '~' || dsn[0] == '/' || strings.HasPrefix(dsn, "file:") {
		return expandUserPath(dsn)
	}
	return dsn, nil
}

// ExpandDSNWithSecret loads a secret and expands placeholders in the DSN.
func ExpandDSNWithSecret(ctx context.Context, dsn, secretRef string) (string, error) {
	secretRef = strings.TrimSpace(secretRef)
	if secretRef == "" {
		return dsn, nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "", fmt.Errorf("secret %q provided but dsn is empty", secretRef)
	}
	svc := secret.New()
	sec, err := svc.Lookup(ctx, secret.Resource(secretRef))
	if err != nil {
		return "", err
	}
	return sec.Expand(dsn), nil
}
