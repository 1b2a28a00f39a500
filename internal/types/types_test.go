package types

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ibeckermayer/tastemap/internal/table"
)

func ptr(f float64) *float64 { return &f }

func TestTransientKeyRoundTrip(t *testing.T) {
	key := TransientKey(3, "ChIJ_abc_def")
	if key != "3_ChIJ_abc_def" {
		t.Fatalf("TransientKey = %q", key)
	}

	uid, rid, ok := SplitTransientKey(key)
	if !ok || uid != 3 || rid != "ChIJ_abc_def" {
		t.Errorf("SplitTransientKey(%q) = %d, %q, %v", key, uid, rid, ok)
	}
}

func TestSplitTransientKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "7", "x_abc", "7_", "_abc"} {
		if _, _, ok := SplitTransientKey(key); ok {
			t.Errorf("SplitTransientKey(%q) should fail", key)
		}
	}
}

func TestValidIDs(t *testing.T) {
	if (Rating{UserID: 0}).ValidIDs() {
		t.Error("Rating with user_id 0 should be invalid")
	}
	if !(Rating{UserID: 1}).ValidIDs() {
		t.Error("Rating with user_id 1 should be valid")
	}

	cases := []struct {
		row  ReviewSentiment
		want bool
	}{
		{ReviewSentiment{ReviewID: "1", UserID: 1}, true},
		{ReviewSentiment{ReviewID: "0", UserID: 1}, false},
		{ReviewSentiment{ReviewID: "", UserID: 1}, false},
		{ReviewSentiment{ReviewID: "4", UserID: 0}, false},
	}
	for _, c := range cases {
		if got := c.row.ValidIDs(); got != c.want {
			t.Errorf("ValidIDs(%+v) = %v, want %v", c.row, got, c.want)
		}
	}
}

func TestHasText(t *testing.T) {
	if (Rating{ReviewText: " \n\t"}).HasText() {
		t.Error("Whitespace-only review should have no text")
	}
	if !(Rating{ReviewText: "ok"}).HasText() {
		t.Error("Non-empty review should have text")
	}
}

func TestRestaurantTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), RestaurantsFile)
	want := []Restaurant{
		{
			RestaurantID: "ChIJ1",
			Name:         `Casa "Pepe", Madrid`,
			Address:      "Calle Mayor 1, 28013 Madrid",
			LocationLat:  40.4168,
			LocationLng:  -3.7038,
			PrimaryType:  "spanish_restaurant",
			PriceLevel:   2,
			Rating:       4.5,
			Attributes:   Attributes{DineIn: true, Reservable: true, UserRatingCount: 1234},
		},
		{RestaurantID: "ChIJ2", Name: "Unknowns"},
	}

	if err := table.Save(path, RestaurantSchema, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := table.Load(path, RestaurantSchema)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRatingTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), RatingsFile)
	want := []Rating{
		{UserID: 1, RestaurantID: "ChIJ1", Rating: 5, ReviewText: "Great paella,\nwould return", Date: "2024-03-01", SourceUserName: "Ana"},
		{UserID: 2, RestaurantID: "ChIJ1", Rating: 0, ReviewText: "", Date: "2024-03-02", SourceUserName: "Bob"},
	}

	if err := table.Save(path, RatingSchema, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := table.Load(path, RatingSchema)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSentimentTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), SentimentFile)
	want := []ReviewSentiment{
		{
			ReviewID:         "1",
			UserID:           1,
			RestaurantID:     "ChIJ1",
			OverallScore:     0.8,
			OverallMagnitude: 2.1,
			FoodScore:        ptr(0.9),
			ServiceScore:     ptr(-0.25),
			Language:         "es",
			Emotions:         []string{"joy"},
		},
		{
			ReviewID:     "2",
			UserID:       2,
			RestaurantID: "ChIJ2",
			Language:     "en",
			Emotions:     []string{},
		},
	}

	if err := table.Save(path, SentimentSchema, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := table.Load(path, SentimentSchema)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
	if got[1].AmbianceScore != nil || got[1].ValueScore != nil {
		t.Error("Absent aspect scores should load as nil")
	}
}

func TestRatingDecodeRequiresRestaurant(t *testing.T) {
	row := table.NewRow(RatingSchema.Columns(), []string{"1", "", "5", "text", "2024-01-01", "Ana"})
	if _, err := RatingSchema.Decode(row); err == nil {
		t.Error("Expected error for missing restaurant_id")
	}
}
