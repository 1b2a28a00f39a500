package providers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/store"
	"github.com/ibeckermayer/tastemap/internal/types"
)

// AnthropicProvider implements sentiment analysis using Anthropic's Claude API
type AnthropicProvider struct {
	client   *anthropic.Client
	model    string
	cacheDir string // exchanges are not cached when empty
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model, cacheDir string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		client:   &client,
		model:    model,
		cacheDir: cacheDir,
	}
}

// AnalyzeSentiment asks Claude to score one review
func (c *AnthropicProvider) AnalyzeSentiment(ctx context.Context, text string) (*types.SentimentResult, error) {
	prompt := buildPrompt(text)

	// Prefill so Claude continues with the JSON object after the "{"
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if c.cacheDir != "" {
		if _, err := store.SaveLLMExchange(c.cacheDir, store.LLMExchange{
			Timestamp: time.Now(),
			Provider:  config.ProviderAnthropic,
			Model:     c.model,
			Prompt:    prompt,
			Response:  responseText,
		}); err != nil {
			log.Printf("[analyzer] Failed to cache LLM exchange: %v", err)
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("Claude: %w", ErrEmptyResponse)
	}

	return ParseSentimentResponse([]byte("{" + responseText))
}
