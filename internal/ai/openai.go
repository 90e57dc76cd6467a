package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer condenses post text that exceeds the destination's size budget.
// It is optional everywhere it is injected; callers fall back to plain
// truncation when it is nil or fails.
type Summarizer interface {
	// Condense rewrites text to fit within roughly limit runes while
	// keeping the author's voice.
	Condense(ctx context.Context, text string, limit int) (string, error)
}

// OpenAIClient implements Summarizer using OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{client: c, model: model}
}

func (o *OpenAIClient) Condense(ctx context.Context, text string, limit int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	text = strings.TrimSpace(text)
	if len([]rune(text)) <= limit {
		return text, nil
	}

	sys := fmt.Sprintf(`
		Shorten the text to fit within %d characters.
		Keep the author's voice and wording where possible; cut, don't paraphrase.
		Return the shortened text only, plain text, no preamble.
		`, limit)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		slog.Error("openai: condense error", "err", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
