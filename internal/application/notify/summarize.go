package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultSummaryModel   = "gpt-5-nano"
	DefaultSummaryTimeout = 2 * time.Second
)

// Summarizer condenses a user request into a short title.
type Summarizer interface {
	Summarize(ctx context.Context, message string) (string, error)
}

// SummarizerConfig points the summarizer at any OpenAI-compatible endpoint.
type SummarizerConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAISummarizer asks a chat completion model for a 3-8 word summary.
type OpenAISummarizer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAISummarizer(cfg SummarizerConfig) *OpenAISummarizer {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultSummaryModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSummaryTimeout
	}
	return &OpenAISummarizer{client: openai.NewClientWithConfig(oc), model: cfg.Model, timeout: cfg.Timeout}
}

// SummaryPrompt is the instruction sent with the user's first message.
func SummaryPrompt(message string) string {
	return fmt.Sprintf("Summarize this Claude Code session request in 3-8 words: %q", message)
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:           s.model,
		ReasoningEffort: "minimal",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: SummaryPrompt(message)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary request: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
