package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ibeckermayer/tastemap/internal/googleapi"
	"github.com/ibeckermayer/tastemap/internal/types"
)

const DefaultLanguageURL = "https://language.googleapis.com/v1"

// GoogleProvider implements sentiment analysis using the Cloud Natural
// Language API
type GoogleProvider struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewGoogleProvider creates a new Cloud Natural Language provider
func NewGoogleProvider(apiKey string) *GoogleProvider {
	return &GoogleProvider{
		BaseURL: DefaultLanguageURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type nlDocument struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type nlRequest struct {
	Document     nlDocument `json:"document"`
	EncodingType string     `json:"encodingType"`
}

type nlSentiment struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

type nlResponse struct {
	DocumentSentiment *nlSentiment `json:"documentSentiment"`
	Language          string       `json:"language"`
	Sentences         []struct {
		Text struct {
			Content string `json:"content"`
		} `json:"text"`
		Sentiment *nlSentiment `json:"sentiment"`
	} `json:"sentences"`
}

// AnalyzeSentiment sends one document to documents:analyzeSentiment
func (g *GoogleProvider) AnalyzeSentiment(ctx context.Context, text string) (*types.SentimentResult, error) {
	jsonBody, err := json.Marshal(nlRequest{
		Document:     nlDocument{Type: "PLAIN_TEXT", Content: text},
		EncodingType: "UTF8",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := g.BaseURL + "/documents:analyzeSentiment"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	body, err := googleapi.Do(client, req, "Natural Language API", g.APIKey)
	if err != nil {
		return nil, err
	}

	var parsed nlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Natural Language response: %w", err)
	}
	if parsed.DocumentSentiment == nil {
		return nil, ErrEmptyResponse
	}

	result := &types.SentimentResult{
		Score:     parsed.DocumentSentiment.Score,
		Magnitude: parsed.DocumentSentiment.Magnitude,
		Language:  parsed.Language,
		Sentences: make([]types.Sentence, 0, len(parsed.Sentences)),
	}
	for _, s := range parsed.Sentences {
		sentence := types.Sentence{Text: s.Text.Content}
		if s.Sentiment != nil {
			sentence.Score = s.Sentiment.Score
		}
		result.Sentences = append(result.Sentences, sentence)
	}

	return result, nil
}
