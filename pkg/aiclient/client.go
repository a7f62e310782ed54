/**
 * @description
 * This package provides a minimal chat-completions client for the AI backend
 * used by the categorization engine. The backend is optional and possibly
 * offline (a local model server or a hosted OpenAI-compatible endpoint), so
 * the client is built to fail fast and cleanly: callers treat every error as a
 * signal to fall back to heuristics.
 *
 * Key behaviors:
 * - IsConfigured reports whether credentials exist; without them callers skip
 *   the network entirely.
 * - A "model not found" error for a configured non-default model triggers one
 *   retry against the default fallback model before giving up.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, strings, time: Standard Go libraries.
 */

package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultModel is the fallback model retried when the configured model is
// unknown to the backend.
const DefaultModel = "gpt-4o-mini"

const defaultTimeout = 60 * time.Second

// ErrNotConfigured is returned when no API credentials are set.
var ErrNotConfigured = errors.New("ai backend is not configured")

// errModelNotFound marks a backend rejection of the requested model.
var errModelNotFound = errors.New("model not found")

// ChatMessage is one message in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body for /chat/completions.
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

// ChatCompletionResponse is the response body for /chat/completions.
type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Client is a client for an OpenAI-compatible chat-completions backend.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a new AI backend client. An empty model selects
// DefaultModel directly.
func NewClient(baseURL, apiKey, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// IsConfigured reports whether the client holds credentials for the backend.
func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Complete sends a single-turn prompt and returns the first choice's message
// content, trimmed. An unknown configured model is retried once against
// DefaultModel.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	content, err := c.complete(ctx, c.model, prompt)
	if errors.Is(err, errModelNotFound) && c.model != DefaultModel {
		content, err = c.complete(ctx, DefaultModel, prompt)
	}
	return content, err
}

func (c *Client) complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:       model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   50,
		Temperature: 0,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isModelNotFound(resp.StatusCode, respBody) {
			return "", fmt.Errorf("model %q rejected by backend: %w", model, errModelNotFound)
		}
		return "", fmt.Errorf("ai backend error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("ai backend returned no choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("ai backend returned an empty completion")
	}
	return content, nil
}

// isModelNotFound recognizes the backend's "model not found" rejections across
// the common OpenAI-compatible shapes.
func isModelNotFound(status int, body []byte) bool {
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil {
		code := strings.ToLower(envelope.Error.Code)
		if code == "model_not_found" {
			return true
		}
		if status == http.StatusNotFound && strings.Contains(strings.ToLower(envelope.Error.Message), "model") {
			return true
		}
	}
	return false
}
