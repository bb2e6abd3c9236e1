package fasttext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/langprobe/langid"
)

const (
	defaultBaseURL     = "http://localhost:8008"
	predictEndpoint    = "/predict"
	healthEndpoint     = "/health"
	defaultHTTPTimeout = 30 * time.Second
)

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.HTTPClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.HTTPClient = client
		}
	}
}

// Client calls a fastText language-identification serving endpoint.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type predictRequest struct {
	Model string `json:"model,omitempty"`
	Text  string `json:"text"`
	K     int    `json:"k"`
}

type predictResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Error  string    `json:"error"`
}

func NewClientWithOptions(model string, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:    defaultBaseURL,
		Model:      model,
		HTTPClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+healthEndpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fasttext health error: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// Predict returns up to k labels with probabilities; k <= 0 requests all labels.
func (c *Client) Predict(ctx context.Context, text string, k int) ([]string, []float64, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("fasttext client is nil")
	}
	// fastText predicts a single line
	text = strings.ReplaceAll(text, "\n", " ")
	if k <= 0 {
		k = langid.Unbounded
	}
	reqBody, err := json.Marshal(predictRequest{Model: c.Model, Text: text, K: k})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+predictEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("fasttext API error: %s", strings.TrimSpace(string(body)))
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, nil, fmt.Errorf("fasttext API error: %s", out.Error)
	}
	if len(out.Labels) != len(out.Scores) {
		return nil, nil, fmt.Errorf("fasttext returned %d labels for %d scores", len(out.Labels), len(out.Scores))
	}
	return out.Labels, out.Scores, nil
}
