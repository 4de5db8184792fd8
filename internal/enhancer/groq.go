package enhancer

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

	"github.com/valpere/promptg/internal/logger"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama3-8b-8192"

	temperature = 0.7
	maxTokens   = 500

	systemInstruction = "You are a professional prompt engineer specialized in creating high-quality, detailed prompts for AI image and video generation. Enhance the given prompt while maintaining its core intent, making it more descriptive and technically precise for optimal AI generation results."

	// maxErrorBody bounds how much of a failed response is kept for
	// diagnostics.
	maxErrorBody = 4 << 10
)

// Options configures a Client. Zero values fall back to the Groq defaults.
type Options struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to Groq's OpenAI-compatible API. It performs exactly one
// request per call: no retries, no backoff.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	log     *slog.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// New creates a Client.
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		client:  client,
		log:     log,
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// ValidateCredential lists models with the credential and reports whether the
// service answered 2xx. Transport failures map to false.
func (c *Client) ValidateCredential(ctx context.Context, credential string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		c.log.Error("build validation request", "error", err)
		return false
	}
	c.authorize(req, credential)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("credential validation failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	ok := isSuccess(resp.StatusCode)
	c.log.Debug("credential validation", "status", resp.StatusCode, "ok", ok)
	return ok
}

// Enhance asks the model to rewrite prompt. When the response carries no
// content the original prompt is returned unchanged.
func (c *Client) Enhance(ctx context.Context, credential, prompt string) (string, error) {
	start := time.Now()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: userMessage(prompt)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req, credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "chat completion request", Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("chat completion rejected", "status", resp.StatusCode, "model", c.model)
		return "", &RemoteServiceError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	c.log.Debug("chat completion",
		"model", c.model,
		"prompt_tokens", chat.Usage.PromptTokens,
		"completion_tokens", chat.Usage.CompletionTokens,
		"latency", time.Since(start))

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		c.log.Info("empty completion, keeping original prompt")
		return prompt, nil
	}
	return chat.Choices[0].Message.Content, nil
}

func (c *Client) authorize(req *http.Request, credential string) {
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Content-Type", "application/json")
}

func userMessage(prompt string) string {
	return `Please enhance this prompt for AI image/video generation: "` + prompt + `"`
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

var (
	_ Enhancer            = (*Client)(nil)
	_ CredentialValidator = (*Client)(nil)
)
