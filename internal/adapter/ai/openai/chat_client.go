package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

const chatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// Client provides access to the OpenAI chat and realtime APIs.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a new OpenAI API client. model is the fallback
// used when a request does not name one.
func NewClient(cfg config.OpenAIConfig, log *zap.Logger) *Client {
	return &Client{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete runs a chat completion and reports token usage alongside
// the reply text.
func (c *Client) Complete(ctx context.Context, model string, temperature float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error) {
	if c.apiKey == "" {
		return "", nil, fmt.Errorf("openai: API key not configured")
	}
	if model == "" {
		model = c.model
	}

	reqBody := chatRequest{
		Model:       model,
		Temperature: temperature,
		Messages:    make([]chatMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		reqBody.Messages = append(reqBody.Messages, chatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chatCompletionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("openai: API error status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", nil, fmt.Errorf("openai: no choices returned")
	}

	usage := &ports.TokenUsage{
		Model:        result.Model,
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
	}
	if usage.Model == "" {
		usage.Model = model
	}

	c.log.Debug("chat completion",
		zap.String("model", usage.Model),
		zap.Int64("input_tokens", usage.InputTokens),
		zap.Int64("output_tokens", usage.OutputTokens),
	)

	return result.Choices[0].Message.Content, usage, nil
}
