// Package enrich attaches an animated image to a registration by turning its
// free text description into a search term and looking that term up.
package enrich

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const extractPrompt = "You extract the main potluck item from a guest's description. " +
	"Reply with only the single most prominent food, drink or item, in English, " +
	"in at most a few words and without punctuation."

// Normalizer turns free text into a short search term. It never fails; on
// any problem it returns the input unchanged.
type Normalizer interface {
	Normalize(ctx context.Context, text string) string
}

type OpenAINormalizer struct {
	client *openai.Client
	model  string
}

// NewOpenAINormalizer returns nil when no API key is configured.
func NewOpenAINormalizer(apiKey, baseURL, model string) *OpenAINormalizer {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAINormalizer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (n *OpenAINormalizer) Normalize(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if n == nil || text == "" {
		return text
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   20,
		Temperature: 0.3,
	})
	if err != nil {
		logrus.WithError(err).Warn("description normalizer failed, using original text")
		return text
	}
	if len(resp.Choices) == 0 {
		return text
	}

	item := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `."'`)
	if item == "" {
		return text
	}
	return item
}

// Passthrough is the Normalizer used when no language model is configured.
type Passthrough struct{}

func (Passthrough) Normalize(_ context.Context, text string) string {
	return strings.TrimSpace(text)
}
