package analyzer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// fakeProvider scores every text with a fixed result. Texts containing
// "boom" fail.
type fakeProvider struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	result   types.SentimentResult
}

func (f *fakeProvider) AnalyzeSentiment(ctx context.Context, text string) (*types.SentimentResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if strings.Contains(text, "boom") {
		return nil, errors.New("service unavailable")
	}
	res := f.result
	res.Sentences = []types.Sentence{{Text: text, Score: f.result.Score}}
	return &res, nil
}

func ratings(texts ...string) []types.Rating {
	out := make([]types.Rating, len(texts))
	for i, t := range texts {
		out[i] = types.Rating{UserID: i + 1, RestaurantID: "r1", Rating: 4, ReviewText: t}
	}
	return out
}

func TestAnalyzeSkipsEmptyText(t *testing.T) {
	texts := []string{"good food", "", "nice staff", "   ", "cheap", "tasty", "\n", "cozy", "fine", "ok"}
	p := &fakeProvider{result: types.SentimentResult{Score: 0.4, Magnitude: 0.8}}
	a := New(p, nil, Options{BatchSize: 10})

	rows, stats, err := a.Analyze(context.Background(), ratings(texts...))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(rows) != 7 {
		t.Errorf("Got %d rows, want 7", len(rows))
	}
	if len(p.calls) != 7 {
		t.Errorf("Provider called %d times, want 7", len(p.calls))
	}
	if stats.SkippedEmpty != 3 || stats.Analyzed != 7 || stats.Failed != 0 || stats.Submitted != 10 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	for _, r := range rows {
		if strings.TrimSpace(r.ReviewID) == "" {
			t.Errorf("Row without review id: %+v", r)
		}
	}
}

func TestAnalyzeOmitsFailedReviews(t *testing.T) {
	p := &fakeProvider{result: types.SentimentResult{Score: 0.2, Magnitude: 0.3}}
	a := New(p, nil, Options{BatchSize: 2})

	rows, stats, err := a.Analyze(context.Background(), ratings("fine", "boom", "good"))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if stats.Failed != 1 || stats.Analyzed != 2 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ReviewID)
	}
	if fmt.Sprint(ids) != "[1_r1 3_r1]" {
		t.Errorf("Review ids = %v, want [1_r1 3_r1]", ids)
	}
}

func TestAnalyzeBoundsConcurrencyByBatch(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("review %d", i)
	}
	p := &fakeProvider{}
	a := New(p, nil, Options{BatchSize: 4})

	rows, _, err := a.Analyze(context.Background(), ratings(texts...))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(rows) != 25 {
		t.Errorf("Got %d rows, want 25", len(rows))
	}
	if got := p.maxSeen.Load(); got > 4 {
		t.Errorf("Saw %d concurrent calls, batch size is 4", got)
	}
	// output keeps input order
	for i, r := range rows {
		if r.UserID != i+1 {
			t.Fatalf("Row %d has user %d", i, r.UserID)
		}
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(&fakeProvider{}, nil, Options{})
	rows, _, err := a.Analyze(ctx, ratings("good"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

// cancellingProvider cancels the run from inside the batch, the way a
// signal arriving mid-request would
type cancellingProvider struct {
	cancel context.CancelFunc
}

func (c *cancellingProvider) AnalyzeSentiment(ctx context.Context, text string) (*types.SentimentResult, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnalyzeCancelledInLastBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := New(&cancellingProvider{cancel: cancel}, nil, Options{BatchSize: 10})
	rows, stats, err := a.Analyze(ctx, ratings("good", "bad"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(rows) != 0 || stats.Failed != 0 {
		t.Errorf("Cancelled batch produced %d rows, %d failures", len(rows), stats.Failed)
	}
}

func TestEnrich(t *testing.T) {
	a := New(nil, nil, Options{})
	r := types.Rating{UserID: 2, RestaurantID: "ChIJ_x", ReviewText: "La comida es muy buena y el servicio excelente"}
	res := &types.SentimentResult{
		Score:     0.8,
		Magnitude: 2.0,
		Sentences: []types.Sentence{
			{Text: "La comida es muy buena", Score: 0.9},
			{Text: "y el servicio excelente", Score: 0.7},
		},
	}

	row := a.Enrich(r, res)

	if row.ReviewID != "2_ChIJ_x" || row.UserID != 2 || row.RestaurantID != "ChIJ_x" {
		t.Errorf("Unexpected identifiers %+v", row)
	}
	if row.FoodScore == nil || *row.FoodScore != 0.9 {
		t.Errorf("FoodScore = %v, want 0.9", row.FoodScore)
	}
	if row.ServiceScore == nil || *row.ServiceScore != 0.7 {
		t.Errorf("ServiceScore = %v, want 0.7", row.ServiceScore)
	}
	if row.AmbianceScore != nil || row.ValueScore != nil {
		t.Errorf("Unmentioned aspects should be nil: %+v", row)
	}
	if row.Language != LangSpanish {
		t.Errorf("Language = %q, want es", row.Language)
	}
	if !reflect.DeepEqual(row.Emotions, []string{Joy}) {
		t.Errorf("Emotions = %v, want [joy]", row.Emotions)
	}
}

func TestScoreAspectsRunningAverage(t *testing.T) {
	lex := DefaultLexicon()
	scores := lex.ScoreAspects([]types.Sentence{
		{Text: "The FOOD was cold", Score: -0.4},
		{Text: "but the dessert saved it", Score: 0.8},
		{Text: "and the staff were lovely", Score: 0.6},
		{Text: "Delicious coffee too", Score: 1.0},
	})

	// (((-0.4 + 0.8) / 2) + 1.0) / 2
	if f := scores[Food]; f == nil || math.Abs(*f-0.6) > 1e-9 {
		t.Errorf("Food = %v, want 0.6", scores[Food])
	}
	if s := scores[Service]; s == nil || math.Abs(*s-0.6) > 1e-9 {
		t.Errorf("Service = %v, want 0.6", scores[Service])
	}
	if scores[Ambiance] != nil || scores[Value] != nil {
		t.Errorf("Expected nil ambiance and value, got %v %v", scores[Ambiance], scores[Value])
	}
}

func TestScoreAspectsNoSentences(t *testing.T) {
	scores := DefaultLexicon().ScoreAspects(nil)
	for _, a := range Aspects {
		if scores[a] != nil {
			t.Errorf("%s = %v, want nil", a, *scores[a])
		}
	}
}

func TestClassifyEmotions(t *testing.T) {
	tests := []struct {
		score, magnitude float64
		want             []string
	}{
		{0.8, 2.0, []string{Joy}},
		{0.8, 1.0, []string{}},
		{0.7, 3.0, []string{Satisfaction}},
		{0.6, 0.5, []string{Satisfaction}},
		{0.5, 0.5, []string{Contentment}},
		{0.1, 0.1, []string{Contentment}},
		{0, 0, []string{}},
		{-0.2, 0.4, []string{Disappointment}},
		{-0.5, 0.4, []string{Disappointment}},
		{-0.6, 1.0, []string{Frustration}},
		{-0.7, 1.0, []string{Frustration}},
		{-0.9, 2.0, []string{Anger}},
	}

	for _, tt := range tests {
		got := ClassifyEmotions(tt.score, tt.magnitude)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ClassifyEmotions(%v, %v) = %v, want %v", tt.score, tt.magnitude, got, tt.want)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	lex := DefaultLexicon()
	tests := map[string]string{
		"la comida es muy buena y el servicio excelente": LangSpanish,
		"the food was great":                             LangEnglish,
		"":                                               LangEnglish,
		"Excelente!":                                     LangSpanish,
		"great tapas, muy bien":                          LangSpanish,
		"we ordered the paella and it was fantastic":     LangEnglish,
	}

	for text, want := range tests {
		if got := lex.DetectLanguage(text); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestNewLexiconOverrides(t *testing.T) {
	lex := NewLexicon(map[string][]string{"ambiance": {"Vista"}, "food": {}}, []string{"Hola"})

	if got := lex.Keywords(Ambiance); !reflect.DeepEqual(got, []string{"vista"}) {
		t.Errorf("Ambiance keywords = %v", got)
	}
	if len(lex.Keywords(Food)) != len(defaultAspectKeywords[Food]) {
		t.Errorf("Empty override should keep default food keywords")
	}
	if !lex.IsSpanish("hola") || lex.IsSpanish("comida") {
		t.Errorf("Spanish word list not replaced")
	}
}
