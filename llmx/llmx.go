// Package llmx is the client for the structured-extraction backend: an
// OpenAI-style chat-completions endpoint that receives page content plus
// a record schema and answers with a JSON array of candidate records.
package llmx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/listcrawl/provider"
)

// Request carries one extraction call.
type Request struct {
	Content     string // page content in the input format (markdown)
	SchemaJSON  []byte // JSON Schema for a single record
	Instruction string // extraction instruction text
	Credential  string // provider API key
	Model       string // "<provider>/<model>" identifier
}

// Client talks to chat-completions endpoints.
type Client struct {
	httpc   *http.Client
	catalog *provider.Catalog
	baseURL string // overrides catalog endpoints when set
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpc = c }
}

// WithBaseURL routes every request to a fixed endpoint instead of the
// catalog's per-provider base URLs.
func WithBaseURL(u string) Option {
	return func(cl *Client) { cl.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a Client resolving endpoints through the given catalog.
func New(catalog *provider.Catalog, opts ...Option) *Client {
	c := &Client{
		httpc:   &http.Client{Timeout: 120 * time.Second},
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Extract sends page content to the model behind req.Model and returns
// the raw JSON array text of candidate records (code fences stripped).
func (c *Client) Extract(ctx context.Context, req Request) (string, error) {
	providerID, modelID, ok := strings.Cut(req.Model, "/")
	if !ok {
		return "", fmt.Errorf("llmx: bad model identifier %q", req.Model)
	}

	endpoint := c.baseURL
	if endpoint == "" {
		p, err := c.catalog.Get(providerID)
		if err != nil {
			return "", fmt.Errorf("llmx: %w", err)
		}
		endpoint = strings.TrimRight(p.BaseURL, "/")
	}

	system := req.Instruction +
		"\n\nReturn ONLY a JSON array. Each element must be an object matching this JSON Schema:\n" +
		string(req.SchemaJSON) +
		"\nDo not add explanations or markdown formatting."

	body, err := json.Marshal(chatRequest{
		Model: modelID,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Content},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("llmx: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llmx: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)

	start := time.Now()
	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llmx: http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llmx: %s returned status %d: %s", providerID, resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("llmx: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("llmx: empty response from %s", providerID)
	}

	c.logger.Debug("llmx: extraction call done",
		"model", req.Model,
		"duration_ms", time.Since(start).Milliseconds(),
		"tokens", cr.Usage.TotalTokens,
		"finish_reason", cr.Choices[0].FinishReason)

	return CleanPayload(cr.Choices[0].Message.Content), nil
}

// CleanPayload strips markdown code fences and surrounding whitespace
// from a model response, leaving the bare JSON text.
func CleanPayload(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
