package types

import "time"

// RunSummary describes one pipeline run
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Target     int       `json:"target"`

	// Table sizes before the run
	ExistingRestaurants int `json:"existing_restaurants"`
	ExistingRatings     int `json:"existing_ratings"`
	ExistingSentiments  int `json:"existing_sentiments"`

	NewRestaurants int `json:"new_restaurants"`
	NewRatings     int `json:"new_ratings"`

	Analyzed       int `json:"analyzed"`
	SkippedEmpty   int `json:"skipped_empty"`
	AnalysisFailed int `json:"analysis_failed"`

	// Rows dropped by identifier cleaning
	RemovedRatings    int `json:"removed_ratings"`
	RemovedSentiments int `json:"removed_sentiments"`

	// Table sizes after the run
	TotalRestaurants int `json:"total_restaurants"`
	TotalRatings     int `json:"total_ratings"`
	TotalSentiments  int `json:"total_sentiments"`
	Users            int `json:"users"`

	AddedRestaurants []Restaurant   `json:"added_restaurants"`
	Emotions         map[string]int `json:"emotions"`  // over this run's new sentiment rows
	Languages        map[string]int `json:"languages"` // over this run's new sentiment rows
}

// Duration is how long the run took
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
