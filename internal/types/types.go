package types

import (
	"strconv"
	"strings"
)

// Restaurant is one entity from the places directory
type Restaurant struct {
	RestaurantID string     `json:"restaurant_id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	LocationLat  float64    `json:"location_lat"`
	LocationLng  float64    `json:"location_lng"`
	PrimaryType  string     `json:"primary_type"`
	PriceLevel   int        `json:"price_level"` // 0-4, 0 when unknown
	Rating       float64    `json:"rating"`      // 0-5, 0 when unknown
	Attributes   Attributes `json:"attributes"`
}

// Attributes holds the feature flags reported by the directory
type Attributes struct {
	DineIn          bool `json:"dine_in"`
	Takeout         bool `json:"takeout"`
	Delivery        bool `json:"delivery"`
	OutdoorSeating  bool `json:"outdoor_seating"`
	Reservable      bool `json:"reservable"`
	UserRatingCount int  `json:"user_rating_count"`
}

// Rating is a single review. UserID is a per-restaurant counter until
// the ratings have been reconciled.
type Rating struct {
	UserID         int    `json:"user_id"`
	RestaurantID   string `json:"restaurant_id"`
	Rating         int    `json:"rating"`
	ReviewText     string `json:"review_text"`
	Date           string `json:"date"` // YYYY-MM-DD
	SourceUserName string `json:"source_user_name"`
}

// HasText reports whether the review carries any non-whitespace text
func (r Rating) HasText() bool {
	return strings.TrimSpace(r.ReviewText) != ""
}

// ValidIDs reports whether the rating survived reconciliation
func (r Rating) ValidIDs() bool {
	return r.UserID != 0
}

// ReviewSentiment is the enrichment derived from one rating.
// Before reconciliation ReviewID holds the transient key.
type ReviewSentiment struct {
	ReviewID         string   `json:"review_id"`
	UserID           int      `json:"user_id"`
	RestaurantID     string   `json:"restaurant_id"`
	OverallScore     float64  `json:"overall_score"`
	OverallMagnitude float64  `json:"overall_magnitude"`
	FoodScore        *float64 `json:"food_score,omitempty"`
	ServiceScore     *float64 `json:"service_score,omitempty"`
	ValueScore       *float64 `json:"value_score,omitempty"`
	AmbianceScore    *float64 `json:"ambiance_score,omitempty"`
	Language         string   `json:"language"`
	Emotions         []string `json:"emotions"`
}

// ValidIDs reports whether the row survived reconciliation
func (s ReviewSentiment) ValidIDs() bool {
	return s.UserID != 0 && s.ReviewID != "" && s.ReviewID != "0"
}

// TransientKey correlates a sentiment row with its source rating before
// global identifiers exist. It is the only transient key format in use.
func TransientKey(userID int, restaurantID string) string {
	return strconv.Itoa(userID) + "_" + restaurantID
}

// SplitTransientKey reverses TransientKey. Restaurant ids may themselves
// contain underscores, so only the first one separates the parts.
func SplitTransientKey(key string) (int, string, bool) {
	uid, rid, ok := strings.Cut(key, "_")
	if !ok || rid == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(uid)
	if err != nil {
		return 0, "", false
	}
	return n, rid, true
}

// Sentence is one sentence-level sentiment from the language service
type Sentence struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// SentimentResult is the language service's answer for one document
type SentimentResult struct {
	Score     float64    `json:"score"`
	Magnitude float64    `json:"magnitude"`
	Language  string     `json:"language,omitempty"`
	Sentences []Sentence `json:"sentences"`
}
