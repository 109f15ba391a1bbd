package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sitegist/sitegist/internal/config"
)

// Client produces a completion for a prompt. Implementations must be safe
// for concurrent use; pages are summarized from multiple goroutines.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	// completionTemperature keeps responses consistent across runs.
	completionTemperature = 0.1
	completionTopP        = 0.9

	// maxCompletionTokens bounds the response length. Summaries and key
	// point lists fit comfortably.
	maxCompletionTokens = 2048

	// defaultMaxAttempts is how many times a request is tried before the
	// last error is returned.
	defaultMaxAttempts = 3

	// retryBaseDelay is the backoff before the first retry; it doubles on
	// each subsequent attempt.
	retryBaseDelay = 1 * time.Second

	// maxResponseSize limits how much of a completion response is read.
	maxResponseSize = 2 * 1024 * 1024 // 2MB

	// maxErrorBody is how much of an error response body is kept for the
	// error message.
	maxErrorBody = 512
)

// chatRequest is the chat completions request payload.
type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p"`
	Stream              bool          `json:"stream"`
}

// chatMessage is a single turn in the conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the chat completions response the client
// reads.
type chatResponse struct {
	CompletionMessage struct {
		Content messageContent `json:"content"`
	} `json:"completion_message"`
}

// messageContent accepts both content shapes the API produces: a
// structured {"type": "text", "text": ...} object and a plain string.
type messageContent struct {
	Type string
	Text string
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *messageContent) UnmarshalJSON(data []byte) error {
	var obj struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		m.Type = obj.Type
		m.Text = obj.Text
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unexpected message content shape: %s", data)
	}
	m.Type = "text"
	m.Text = s
	return nil
}

// LlamaClient calls the Llama chat completions API over HTTP.
//
// Design decision: We talk to the REST endpoint directly instead of
// wrapping a vendor SDK because:
//  1. The crawler needs exactly one operation, prompt in and text out
//  2. The endpoint is configurable, so tests and proxies can stand in
//  3. Retry and timeout policy stay visible in this package
type LlamaClient struct {
	// client is the underlying HTTP client.
	client *http.Client

	// endpoint is the chat completions URL.
	endpoint string

	// apiKey is the bearer token sent with every request.
	apiKey string

	// model is the model identifier sent with every request.
	model string

	// maxAttempts is the total number of tries per completion.
	maxAttempts int

	// retryDelay is the base backoff between attempts.
	retryDelay time.Duration

	// logger receives debug output for request timing and retries.
	logger *slog.Logger
}

// Option configures a LlamaClient.
type Option func(*LlamaClient)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *LlamaClient) {
		c.client = client
	}
}

// WithEndpoint sets the chat completions URL.
func WithEndpoint(endpoint string) Option {
	return func(c *LlamaClient) {
		c.endpoint = endpoint
	}
}

// WithModel sets the model identifier sent with requests.
func WithModel(model string) Option {
	return func(c *LlamaClient) {
		c.model = model
	}
}

// WithMaxAttempts sets the total number of tries per completion.
func WithMaxAttempts(n int) Option {
	return func(c *LlamaClient) {
		c.maxAttempts = n
	}
}

// WithRetryDelay sets the base backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *LlamaClient) {
		c.retryDelay = d
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *LlamaClient) {
		c.logger = logger
	}
}

// NewLlamaClient creates a client for the Llama chat completions API.
// The key is required; everything else has defaults from the config
// package.
func NewLlamaClient(apiKey string, opts ...Option) (*LlamaClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}

	c := &LlamaClient{
		client:      &http.Client{Timeout: config.DefaultTimeout},
		endpoint:    config.DefaultAPIBaseURL,
		apiKey:      apiKey,
		model:       config.DefaultModel,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  retryBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Complete sends the prompt and returns the model's text response.
//
// Transport errors, rate limiting, and server-side failures are retried
// with exponential backoff; other failures return immediately. The last
// error is returned once attempts are exhausted.
func (c *LlamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:               c.model,
		Messages:            []chatMessage{{Role: "user", Content: prompt}},
		MaxCompletionTokens: maxCompletionTokens,
		Temperature:         completionTemperature,
		TopP:                completionTopP,
		Stream:              false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt-1); err != nil {
				return "", err
			}
		}

		text, err := c.complete(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !retryable(err) {
			return "", err
		}
		c.logger.Warn("completion attempt failed",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"error", err,
		)
	}

	return "", lastErr
}

// complete performs a single API call.
func (c *LlamaClient) complete(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completions endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	text := strings.TrimSpace(parsed.CompletionMessage.Content.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.Debug("completion received",
		"model", c.model,
		"chars", len(text),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	return text, nil
}

// backoff sleeps before retry number n, doubling the delay each time with
// jitter so concurrent summarizations do not retry in lockstep. Returns
// early if the context is done.
func (c *LlamaClient) backoff(ctx context.Context, n int) error {
	delay := c.retryDelay * time.Duration(1<<uint(n-1))
	if half := int64(delay) / 2; half > 0 {
		delay += time.Duration(rand.Int63n(half))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// retryable reports whether another attempt may succeed. Rate limiting and
// server-side failures are retryable; other HTTP errors and empty
// responses are not. Anything else is assumed to be a transient transport
// problem.
func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests ||
			httpErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, ErrEmptyResponse)
}

// truncateBody trims an error response body down to a loggable size.
func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
