package corpus

import (
	"fmt"
	"runtime"

	"github.com/viant/langprobe/langid"
	"github.com/viant/langprobe/passage"
)

// Config controls a corpus run.
type Config struct {
	passage.Config `yaml:",inline"`
	langid.Options `yaml:",inline"`
	// Workers bounds concurrently analyzed documents; zero selects runtime.NumCPU().
	Workers int `yaml:"workers" json:"workers"`
}

// Validate checks thresholds, granularity, policy and worker count.
func (c *Config) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %v", langid.ErrConfiguration, err)
	}
	policy, err := langid.ParseFailurePolicy(string(c.Policy))
	if err != nil {
		return fmt.Errorf("%w: %v", langid.ErrConfiguration, err)
	}
	c.Policy = policy
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %v must not be negative", langid.ErrConfiguration, c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Fingerprint identifies settings affecting passages; worker count is excluded.
func (c *Config) Fingerprint() string {
	return fmt.Sprintf("%s/%d/%d/%g/%g/%d/%g/%d/%s",
		c.Granularity, c.WindowSize, c.BlockSize, c.ScriptThreshold, c.LanguageThreshold,
		c.MinLength, c.MinConfidence, c.TopK, c.Policy)
}
