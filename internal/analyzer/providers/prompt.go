package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// ErrEmptyResponse is returned when a provider answers without a usable result
var ErrEmptyResponse = errors.New("provider returned empty response")

// SentimentResponse represents the expected JSON structure from an LLM provider
type SentimentResponse struct {
	Score     *float64 `json:"score"`
	Magnitude float64  `json:"magnitude"`
	Language  string   `json:"language"`
	Sentences []struct {
		Text  string  `json:"text"`
		Score float64 `json:"score"`
	} `json:"sentences"`
}

// ParseSentimentResponse parses raw JSON bytes from an LLM provider into a
// sentiment result. Scores are clamped to [-1, 1] and magnitude to >= 0.
func ParseSentimentResponse(jsonBytes []byte) (*types.SentimentResult, error) {
	var r SentimentResponse
	if err := json.Unmarshal(jsonBytes, &r); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment JSON: %w (response was: %.500s)", err, string(jsonBytes))
	}
	if r.Score == nil {
		return nil, fmt.Errorf("sentiment JSON has no score: %w", ErrEmptyResponse)
	}

	result := &types.SentimentResult{
		Score:     clamp(*r.Score),
		Magnitude: max(r.Magnitude, 0),
		Language:  r.Language,
		Sentences: make([]types.Sentence, 0, len(r.Sentences)),
	}
	for _, s := range r.Sentences {
		result.Sentences = append(result.Sentences, types.Sentence{Text: s.Text, Score: clamp(s.Score)})
	}

	return result, nil
}

func clamp(f float64) float64 {
	return min(max(f, -1), 1)
}

// buildPrompt constructs the LLM prompt for scoring one review
func buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("You are scoring the sentiment of a restaurant review.\n\n")
	sb.WriteString("## Review\n\n")
	sb.WriteString(text)
	sb.WriteString("\n\n## Task\n\n")
	sb.WriteString("Split the review into sentences and provide:\n")
	sb.WriteString("1. score (-1.0 to 1.0): overall sentiment of the whole review\n")
	sb.WriteString("2. magnitude (0.0 or more): overall emotional strength, roughly the sum of the absolute sentence scores\n")
	sb.WriteString("3. language (string): ISO 639-1 code of the review language\n")
	sb.WriteString("4. sentences (array): each sentence verbatim with its own score (-1.0 to 1.0)\n\n")

	sb.WriteString("IMPORTANT: Respond with ONLY a valid JSON object. No markdown, no code blocks, no explanation - just the raw JSON starting with { and ending with }.\n\n")
	sb.WriteString("Example structure:\n")
	sb.WriteString(`{"score": 0.6, "magnitude": 1.4, "language": "en", "sentences": [{"text": "The food was great.", "score": 0.9}, {"text": "Service was slow.", "score": -0.5}]}`)
	sb.WriteString("\n")

	return sb.String()
}
