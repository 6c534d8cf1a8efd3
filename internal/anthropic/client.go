// Package anthropic adapts the Anthropic Messages API to the chat provider
// contract used for answering questions.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cloo-solutions/docqa/internal/domain"
)

const (
	// DefaultChatModel is used when no model is configured
	DefaultChatModel = "claude-sonnet-4-5"
	// DefaultMaxTokens is used when the caller does not bound the output
	DefaultMaxTokens = 1024
)

// ErrEmptyCompletion is returned when the response carries no text
var ErrEmptyCompletion = errors.New("no response from Anthropic")

// MessagesAPI is the subset of the Anthropic SDK used by Client.
type MessagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Client answers prompts with an Anthropic model.
type Client struct {
	messages MessagesAPI
	model    string
}

type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a Client with the given configuration.
func NewClient(cfg Config) *Client {
	sdk := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return newClientWithAPI(&sdk.Messages, cfg.Model)
}

func newClientWithAPI(api MessagesAPI, model string) *Client {
	if model == "" {
		model = DefaultChatModel
	}
	return &Client{messages: api, model: model}
}

// Complete sends the ordered messages to the model and returns the joined text
// blocks of the reply.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage, params domain.CompletionParams) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("messages cannot be empty")
	}

	resp, err := c.messages.New(ctx, buildParams(c.model, messages, params))
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	answer := b.String()
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyCompletion
	}
	return answer, nil
}

// buildParams maps system messages to the System field and the rest to the
// conversation, keeping their order.
func buildParams(model string, messages []domain.ChatMessage, params domain.CompletionParams) anthropic.MessageNewParams {
	maxTokens := params.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(params.Temperature)),
	}

	for _, m := range messages {
		switch m.Role {
		case domain.ChatRoleSystem:
			req.System = append(req.System, anthropic.TextBlockParam{Text: m.Content})
		case domain.ChatRoleAssistant:
			req.Messages = append(req.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			req.Messages = append(req.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	return req
}
