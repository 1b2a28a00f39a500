package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/browser"

	"github.com/ibeckermayer/tastemap/internal/analyzer"
	"github.com/ibeckermayer/tastemap/internal/collector"
	"github.com/ibeckermayer/tastemap/internal/config"
	"github.com/ibeckermayer/tastemap/internal/notifier"
	"github.com/ibeckermayer/tastemap/internal/places"
	"github.com/ibeckermayer/tastemap/internal/reconcile"
	"github.com/ibeckermayer/tastemap/internal/report"
	"github.com/ibeckermayer/tastemap/internal/store"
	"github.com/ibeckermayer/tastemap/internal/table"
	"github.com/ibeckermayer/tastemap/internal/types"
)

// reportRestaurants caps the restaurants listed in a run report
const reportRestaurants = 50

// App holds the application state.
type App struct {
	mu       sync.RWMutex
	creds    config.Credentials // immutable after creation
	cacheDir string             // immutable after creation

	// Mutable fields - use getSnapshot() for concurrent access.
	config    *config.Config
	collector *collector.Collector
	analyzer  *analyzer.Analyzer
	notifier  *notifier.Notifier // nil when reports are not mailed
}

// snapshot holds fields that may be replaced by ReloadConfig.
// Use getSnapshot() to obtain a consistent, point-in-time copy.
type snapshot struct {
	config    *config.Config
	collector *collector.Collector
	analyzer  *analyzer.Analyzer
	notifier  *notifier.Notifier
}

// getSnapshot returns a snapshot of mutable fields under read lock.
func (a *App) getSnapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		config:    a.config,
		collector: a.collector,
		analyzer:  a.analyzer,
		notifier:  a.notifier,
	}
}

// New creates a new App instance from prebuilt components. An empty
// cacheDir disables step snapshots and reports.
func New(cfg *config.Config, col *collector.Collector, an *analyzer.Analyzer, cacheDir string) *App {
	return &App{
		config:    cfg,
		collector: col,
		analyzer:  an,
		cacheDir:  cacheDir,
	}
}

// FromConfig wires the production collector and analyzer.
func FromConfig(cfg *config.Config, creds config.Credentials, cacheDir string) (*App, error) {
	col, an, err := build(cfg, creds, cacheDir)
	if err != nil {
		return nil, err
	}
	n, err := notifier.NewFromConfig(cfg.Notify, creds.SMTPPassword)
	if err != nil {
		return nil, err
	}

	a := New(cfg, col, an, cacheDir)
	a.creds = creds
	a.notifier = n
	return a, nil
}

func build(cfg *config.Config, creds config.Credentials, cacheDir string) (*collector.Collector, *analyzer.Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := places.NewClient(creds.PlacesAPIKey)
	if err != nil {
		return nil, nil, err
	}
	col := collector.New(client, CollectorOptions(cfg))

	lexicon := analyzer.DefaultLexicon()
	if path := cfg.Analysis.LexiconPath; path != "" {
		override, err := config.LoadLexicon(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
		}
		lexicon = analyzer.NewLexicon(override.Aspects, override.SpanishWords)
	}

	llmCache := ""
	if cfg.Output.CacheSteps {
		llmCache = cacheDir
	}
	provider, err := analyzer.NewProvider(cfg.Analysis.Provider, creds.LanguageAPIKey, cfg.Analysis.Model, llmCache)
	if err != nil {
		return nil, nil, err
	}
	an := analyzer.New(provider, lexicon, analyzer.Options{
		BatchSize:  cfg.Analysis.BatchSize,
		BatchDelay: config.Millis(cfg.Analysis.BatchDelayMs),
	})

	return col, an, nil
}

// CollectorOptions maps the collection config onto collector options
func CollectorOptions(cfg *config.Config) collector.Options {
	c := cfg.Collection
	return collector.Options{
		Phrases: c.Phrases,
		Bias: places.Circle{
			Latitude:     c.Latitude,
			Longitude:    c.Longitude,
			RadiusMeters: c.RadiusMeters,
		},
		DetailDelay:   config.Millis(c.DetailDelayMs),
		PhraseDelay:   config.Millis(c.PhraseDelayMs),
		SearchBackoff: config.Millis(c.SearchBackoffMs),
	}
}

// Paths returns the three table files under the data directory.
func Paths(dataDir string) (restaurants, ratings, sentiment string) {
	return filepath.Join(dataDir, types.RestaurantsFile),
		filepath.Join(dataDir, types.RatingsFile),
		filepath.Join(dataDir, types.SentimentFile)
}

// collectedStep is the step snapshot of what one run fetched
type collectedStep struct {
	Restaurants []types.Restaurant `json:"restaurants"`
	Ratings     []types.Rating     `json:"ratings"`
}

// reconciledStep is the step snapshot of the identifier tables
type reconciledStep struct {
	Users             reconcile.UserIDs    `json:"users"`
	ReviewKeys        reconcile.ReviewKeys `json:"review_keys"`
	RemovedRatings    int                  `json:"removed_ratings"`
	RemovedSentiments int                  `json:"removed_sentiments"`
}

// Run performs the full load -> collect -> analyze -> reconcile -> save
// flow. Tables are only written once every step has succeeded, so a
// cancelled run leaves the previous files untouched.
func (a *App) Run(ctx context.Context) (*types.RunSummary, error) {
	s := a.getSnapshot()
	summary := &types.RunSummary{
		RunID:     ulid.Make().String(),
		StartedAt: time.Now(),
		Target:    s.config.Collection.TargetRestaurants,
	}
	log.Printf("Starting run %s (target %d restaurants)", summary.RunID, summary.Target)

	// Step 1: Load what is already stored
	dataDir, err := s.config.DataPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	restaurantsPath, ratingsPath, sentimentPath := Paths(dataDir)
	existingRestaurants, err := table.Load(restaurantsPath, types.RestaurantSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}
	existingRatings, err := table.Load(ratingsPath, types.RatingSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	existingSentiment, err := table.Load(sentimentPath, types.SentimentSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to load review sentiment: %w", err)
	}
	summary.ExistingRestaurants = len(existingRestaurants)
	summary.ExistingRatings = len(existingRatings)
	summary.ExistingSentiments = len(existingSentiment)
	log.Printf("Loaded %d restaurants, %d ratings, %d sentiment rows", len(existingRestaurants), len(existingRatings), len(existingSentiment))

	// Step 2: Collect new restaurants and their reviews
	collected, err := s.collector.Collect(ctx, summary.Target, collector.Snapshot{
		Restaurants: existingRestaurants,
		Ratings:     existingRatings,
	})
	if err != nil {
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}
	summary.NewRestaurants = collected.NewRestaurants
	summary.NewRatings = collected.NewRatings
	summary.AddedRestaurants = collected.AddedRestaurants()
	newRatings := collected.AddedRatings()
	a.cacheStep(store.StepCollected, summary.RunID, collectedStep{
		Restaurants: summary.AddedRestaurants,
		Ratings:     newRatings,
	})

	// Step 3: Analyze only this run's reviews
	sentiment, stats, err := s.analyzer.Analyze(ctx, newRatings)
	if err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	summary.Analyzed = stats.Analyzed
	summary.SkippedEmpty = stats.SkippedEmpty
	summary.AnalysisFailed = stats.Failed
	summary.Emotions, summary.Languages = distributions(sentiment)
	a.cacheStep(store.StepSentiment, summary.RunID, sentiment)

	// Step 4: Reconcile identifiers over old and new rows together
	before := collected.Ratings
	after, users := reconcile.ReassignUserIDs(before)
	rows := append(reconcile.Keyed(existingSentiment), sentiment...)
	rows, keys := reconcile.ReassignReviewSentimentIDs(rows, before, after)

	ratings, removedRatings := reconcile.CleanInvalidIDs(after)
	rows, removedSentiments := reconcile.CleanInvalidIDs(rows)
	if removedRatings > 0 || removedSentiments > 0 {
		log.Printf("Removed %d ratings and %d sentiment rows with invalid or duplicate ids", removedRatings, removedSentiments)
	}
	summary.RemovedRatings = removedRatings
	summary.RemovedSentiments = removedSentiments
	summary.Users = len(users)
	a.cacheStep(store.StepReconciled, summary.RunID, reconciledStep{
		Users:             users,
		ReviewKeys:        keys,
		RemovedRatings:    removedRatings,
		RemovedSentiments: removedSentiments,
	})

	// Step 5: Persist all three tables
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run interrupted before save: %w", err)
	}
	if err := table.Save(restaurantsPath, types.RestaurantSchema, collected.Restaurants); err != nil {
		return nil, fmt.Errorf("failed to save restaurants: %w", err)
	}
	if err := table.Save(ratingsPath, types.RatingSchema, ratings); err != nil {
		return nil, fmt.Errorf("failed to save ratings: %w", err)
	}
	if err := table.Save(sentimentPath, types.SentimentSchema, rows); err != nil {
		return nil, fmt.Errorf("failed to save review sentiment: %w", err)
	}
	summary.TotalRestaurants = len(collected.Restaurants)
	summary.TotalRatings = len(ratings)
	summary.TotalSentiments = len(rows)
	summary.FinishedAt = time.Now()

	log.Printf("Run %s finished in %v: %d new restaurants, %d new ratings, %d sentiment rows analyzed",
		summary.RunID, summary.Duration().Round(time.Millisecond), summary.NewRestaurants, summary.NewRatings, summary.Analyzed)

	// Step 6: Report
	a.writeReport(s, summary)

	return summary, nil
}

func distributions(rows []types.ReviewSentiment) (emotions, languages map[string]int) {
	emotions = make(map[string]int)
	languages = make(map[string]int)
	for _, r := range rows {
		for _, e := range r.Emotions {
			emotions[e]++
		}
		languages[r.Language]++
	}
	return emotions, languages
}

// cacheStep saves a step snapshot for debugging. Failures are logged only.
func (a *App) cacheStep(step store.StepName, runID string, data any) {
	s := a.getSnapshot()
	if a.cacheDir == "" || !s.config.Output.CacheSteps {
		return
	}
	if path, err := store.SaveStepOutput(a.cacheDir, step, runID, data); err != nil {
		log.Printf("Failed to cache %s: %v", step, err)
	} else {
		log.Printf("Cached %s to: %s", step, path)
	}
}

// writeReport renders the run report into the cache and mails it when a
// notifier is configured. Failures are logged only.
func (a *App) writeReport(s snapshot, summary *types.RunSummary) {
	if !s.config.Output.WriteReport {
		return
	}

	builder, err := report.New(reportRestaurants)
	if err != nil {
		log.Printf("Failed to create report builder: %v", err)
		return
	}
	r, err := builder.Build(summary)
	if err != nil {
		log.Printf("Failed to build report: %v", err)
		return
	}

	if s.notifier != nil {
		if err := s.notifier.SendReport(r); err != nil {
			log.Printf("Failed to send report: %v", err)
		} else {
			log.Println("Report sent")
		}
	}

	if a.cacheDir == "" {
		return
	}
	if _, err := store.SaveStepOutput(a.cacheDir, store.StepReport, summary.RunID, summary); err != nil {
		log.Printf("Failed to save run summary: %v", err)
	}
	if _, err := store.SaveTextOutput(a.cacheDir, store.StepReport, summary.RunID, r.PlainBody, ".txt"); err != nil {
		log.Printf("Failed to save text report: %v", err)
	}
	path, err := store.SaveTextOutput(a.cacheDir, store.StepReport, summary.RunID, r.HTMLBody, ".html")
	if err != nil {
		log.Printf("Failed to save report: %v", err)
		return
	}
	log.Printf("Report saved to: %s", path)
}

// ViewLastReport opens the most recent run report.
func (a *App) ViewLastReport() error {
	path, err := store.LatestStepFile(a.cacheDir, store.StepReport, ".html")
	if err != nil {
		log.Printf("No report found: %v", err)
		return err
	}

	log.Printf("Opening report: %s", path)
	return browser.OpenFile(path)
}

// ReloadConfig reloads the configuration from disk and rebuilds the
// collector and analyzer.
func (a *App) ReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	col, an, err := build(cfg, a.creds, a.cacheDir)
	if err != nil {
		return err
	}
	n, err := notifier.NewFromConfig(cfg.Notify, a.creds.SMTPPassword)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.config = cfg
	a.collector = col
	a.analyzer = an
	a.notifier = n
	a.mu.Unlock()

	log.Println("Configuration reloaded")
	return nil
}
