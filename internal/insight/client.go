package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured means no upstream credential is set; no network call
	// is attempted.
	ErrNotConfigured = errors.New("insight upstream token not configured")

	// ErrMalformedResponse means the upstream answered without the expected
	// message content.
	ErrMalformedResponse = errors.New("unexpected upstream response format")
)

// UpstreamError is a non-success answer (or transport failure) from the
// text-generation service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return "insight upstream: " + e.Message
	}
	return fmt.Sprintf("insight upstream: request failed with status %d", e.StatusCode)
}

// Client calls an OpenAI-compatible chat-completions endpoint. One request,
// no retries: failures surface directly to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

const (
	maxTokens   = 500
	temperature = 0.7
)

// NewClient builds a client. timeout bounds the whole round trip.
func NewClient(baseURL, token, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the prompt upstream and returns the generated narrative
// unchanged.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if c.token == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and transport failures count as upstream failures.
		return "", &UpstreamError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var parsed chatResponse
		msg := ""
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", ErrMalformedResponse
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrMalformedResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
