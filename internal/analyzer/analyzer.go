package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ibeckermayer/tastemap/internal/analyzer/providers"
	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/types"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 500 * time.Millisecond
)

// Provider defines the interface for language-analysis services
type Provider interface {
	AnalyzeSentiment(ctx context.Context, text string) (*types.SentimentResult, error)
}

// NewProvider creates the language provider named in config. cacheDir, when
// set, receives LLM prompt/response pairs.
func NewProvider(name, apiKey, model, cacheDir string) (Provider, error) {
	switch name {
	case config.ProviderGoogle, "":
		return providers.NewGoogleProvider(apiKey), nil
	case config.ProviderAnthropic:
		return providers.NewAnthropicProvider(apiKey, model, cacheDir), nil
	default:
		return nil, fmt.Errorf("unknown language provider: %s", name)
	}
}

// Options controls batching
type Options struct {
	BatchSize  int
	BatchDelay time.Duration
}

// Stats counts what happened to the reviews handed to Analyze
type Stats struct {
	Submitted    int
	Analyzed     int
	SkippedEmpty int
	Failed       int
}

// Analyzer turns ratings into review sentiment rows
type Analyzer struct {
	provider Provider
	lexicon  *Lexicon
	opts     Options
}

// New creates a new analyzer. A nil lexicon uses the built-in keyword sets.
func New(provider Provider, lexicon *Lexicon, opts Options) *Analyzer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	return &Analyzer{provider: provider, lexicon: lexicon, opts: opts}
}

// Analyze processes ratings in sequential batches. Reviews within a batch are
// sent to the provider concurrently. Reviews with empty text and reviews the
// provider fails on are left out of the result. The returned error is only
// ever the context's.
func (a *Analyzer) Analyze(ctx context.Context, ratings []types.Rating) ([]types.ReviewSentiment, Stats, error) {
	stats := Stats{Submitted: len(ratings)}
	var out []types.ReviewSentiment

	for start := 0; start < len(ratings); start += a.opts.BatchSize {
		if start > 0 && a.opts.BatchDelay > 0 {
			if err := sleep(ctx, a.opts.BatchDelay); err != nil {
				return out, stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return out, stats, err
		}

		end := min(start+a.opts.BatchSize, len(ratings))
		batch := ratings[start:end]
		log.Printf("[analyzer] Analyzing reviews %d-%d of %d", start+1, end, len(ratings))

		// one slot per review; a nil slot means skipped or failed
		results := make([]*types.ReviewSentiment, len(batch))
		failed := make([]bool, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, r := range batch {
			if !r.HasText() {
				continue
			}
			i, r := i, r
			g.Go(func() error {
				res, err := a.provider.AnalyzeSentiment(gctx, r.ReviewText)
				if err != nil {
					log.Printf("[analyzer] Failed to analyze review %s: %v", types.TransientKey(r.UserID, r.RestaurantID), err)
					failed[i] = true
					return nil
				}
				row := a.Enrich(r, res)
				results[i] = &row
				return nil
			})
		}
		// goroutines never return errors
		_ = g.Wait()

		// calls cut short by cancellation are not review failures
		if err := ctx.Err(); err != nil {
			return out, stats, err
		}

		for i, r := range batch {
			switch {
			case !r.HasText():
				stats.SkippedEmpty++
			case failed[i]:
				stats.Failed++
			case results[i] != nil:
				stats.Analyzed++
				out = append(out, *results[i])
			}
		}
	}

	log.Printf("[analyzer] Analyzed %d reviews (%d empty, %d failed)", stats.Analyzed, stats.SkippedEmpty, stats.Failed)
	return out, stats, nil
}

// Enrich builds the sentiment row for one rating from a provider result.
// The row is keyed by the rating's transient key until reconciliation.
func (a *Analyzer) Enrich(r types.Rating, res *types.SentimentResult) types.ReviewSentiment {
	aspects := a.lexicon.ScoreAspects(res.Sentences)

	return types.ReviewSentiment{
		ReviewID:         types.TransientKey(r.UserID, r.RestaurantID),
		UserID:           r.UserID,
		RestaurantID:     r.RestaurantID,
		OverallScore:     res.Score,
		OverallMagnitude: res.Magnitude,
		FoodScore:        aspects[Food],
		ServiceScore:     aspects[Service],
		ValueScore:       aspects[Value],
		AmbianceScore:    aspects[Ambiance],
		Language:         a.lexicon.DetectLanguage(r.ReviewText),
		Emotions:         ClassifyEmotions(res.Score, res.Magnitude),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
