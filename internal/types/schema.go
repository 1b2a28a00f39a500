package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ibeckermayer/tastemap/internal/table"
)

// File names of the persisted tables
const (
	RestaurantsFile = "restaurants.csv"
	RatingsFile     = "ratings.csv"
	SentimentFile   = "review_sentiment.csv"
)

var errMissingRestaurantID = errors.New("missing restaurant_id")

// Table schemas
var (
	RestaurantSchema table.Schema[Restaurant]      = restaurantSchema{}
	RatingSchema     table.Schema[Rating]          = ratingSchema{}
	SentimentSchema  table.Schema[ReviewSentiment] = sentimentSchema{}
)

type restaurantSchema struct{}

func (restaurantSchema) Columns() []string {
	return []string{
		"restaurant_id", "name", "address", "location_lat", "location_lng",
		"primary_type", "price_level", "rating", "attributes",
	}
}

func (restaurantSchema) Encode(r Restaurant) []string {
	attrs, _ := json.Marshal(r.Attributes)
	return []string{
		r.RestaurantID,
		r.Name,
		r.Address,
		table.FormatFloat(r.LocationLat),
		table.FormatFloat(r.LocationLng),
		r.PrimaryType,
		strconv.Itoa(r.PriceLevel),
		table.FormatFloat(r.Rating),
		string(attrs),
	}
}

func (restaurantSchema) Decode(row table.Row) (Restaurant, error) {
	r := Restaurant{
		RestaurantID: row.String("restaurant_id"),
		Name:         row.String("name"),
		Address:      row.String("address"),
		PrimaryType:  row.String("primary_type"),
	}
	if r.RestaurantID == "" {
		return r, errMissingRestaurantID
	}

	var err error
	if r.LocationLat, err = row.Float("location_lat"); err != nil {
		return r, err
	}
	if r.LocationLng, err = row.Float("location_lng"); err != nil {
		return r, err
	}
	if r.PriceLevel, err = row.Int("price_level"); err != nil {
		return r, err
	}
	if r.Rating, err = row.Float("rating"); err != nil {
		return r, err
	}
	if raw := row.String("attributes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.Attributes); err != nil {
			return r, fmt.Errorf("column attributes: %w", err)
		}
	}

	return r, nil
}

type ratingSchema struct{}

func (ratingSchema) Columns() []string {
	return []string{"user_id", "restaurant_id", "rating", "review_text", "date", "source_user_name"}
}

func (ratingSchema) Encode(r Rating) []string {
	return []string{
		strconv.Itoa(r.UserID),
		r.RestaurantID,
		strconv.Itoa(r.Rating),
		r.ReviewText,
		r.Date,
		r.SourceUserName,
	}
}

func (ratingSchema) Decode(row table.Row) (Rating, error) {
	r := Rating{
		RestaurantID:   row.String("restaurant_id"),
		ReviewText:     row.String("review_text"),
		Date:           row.String("date"),
		SourceUserName: row.String("source_user_name"),
	}
	if r.RestaurantID == "" {
		return r, errMissingRestaurantID
	}

	var err error
	if r.UserID, err = row.Int("user_id"); err != nil {
		return r, err
	}
	if r.Rating, err = row.Int("rating"); err != nil {
		return r, err
	}

	return r, nil
}

type sentimentSchema struct{}

func (sentimentSchema) Columns() []string {
	return []string{
		"review_id", "user_id", "restaurant_id", "overall_score", "overall_magnitude",
		"food_score", "service_score", "value_score", "ambiance_score", "language", "emotions",
	}
}

func (sentimentSchema) Encode(s ReviewSentiment) []string {
	emotions := s.Emotions
	if emotions == nil {
		emotions = []string{}
	}
	encoded, _ := json.Marshal(emotions)
	return []string{
		s.ReviewID,
		strconv.Itoa(s.UserID),
		s.RestaurantID,
		table.FormatFloat(s.OverallScore),
		table.FormatFloat(s.OverallMagnitude),
		table.FormatOptFloat(s.FoodScore),
		table.FormatOptFloat(s.ServiceScore),
		table.FormatOptFloat(s.ValueScore),
		table.FormatOptFloat(s.AmbianceScore),
		s.Language,
		string(encoded),
	}
}

func (sentimentSchema) Decode(row table.Row) (ReviewSentiment, error) {
	s := ReviewSentiment{
		ReviewID:     row.String("review_id"),
		RestaurantID: row.String("restaurant_id"),
		Language:     row.String("language"),
	}
	if s.RestaurantID == "" {
		return s, errMissingRestaurantID
	}

	var err error
	if s.UserID, err = row.Int("user_id"); err != nil {
		return s, err
	}
	if s.OverallScore, err = row.Float("overall_score"); err != nil {
		return s, err
	}
	if s.OverallMagnitude, err = row.Float("overall_magnitude"); err != nil {
		return s, err
	}
	if s.FoodScore, err = row.OptFloat("food_score"); err != nil {
		return s, err
	}
	if s.ServiceScore, err = row.OptFloat("service_score"); err != nil {
		return s, err
	}
	if s.ValueScore, err = row.OptFloat("value_score"); err != nil {
		return s, err
	}
	if s.AmbianceScore, err = row.OptFloat("ambiance_score"); err != nil {
		return s, err
	}
	if raw := row.String("emotions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Emotions); err != nil {
			return s, fmt.Errorf("column emotions: %w", err)
		}
	}

	return s, nil
}
