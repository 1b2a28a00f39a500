package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const detailJSON = `{
  "id": "ChIJ_test",
  "displayName": {"text": "Casa Lucio", "languageCode": "es"},
  "formattedAddress": "C. de la Cava Baja, 35, 28005 Madrid",
  "location": {"latitude": 40.4118, "longitude": -3.7089},
  "rating": 4.4,
  "primaryType": "spanish_restaurant",
  "priceLevel": "PRICE_LEVEL_EXPENSIVE",
  "dineIn": true,
  "reservable": true,
  "userRatingCount": 9120,
  "reviews": [
    {
      "rating": 5,
      "text": {"text": "Los huevos rotos son increibles", "languageCode": "es"},
      "authorAttribution": {"displayName": "Maria G"},
      "publishTime": "2024-05-10T19:22:11.123456Z"
    },
    {
      "originalText": {"text": "Too loud"},
      "authorAttribution": {"displayName": " Tom "}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{BaseURL: srv.URL, APIKey: "test-key", HTTPClient: srv.Client()}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err != ErrMissingAPIKey {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSearchSendsQueryAndBias(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/places:searchText" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-key" {
			t.Errorf("Missing api key header")
		}
		if r.Header.Get("X-Goog-FieldMask") != searchFieldMask {
			t.Errorf("Unexpected field mask %q", r.Header.Get("X-Goog-FieldMask"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		w.Write([]byte(`{"places":[{"id":"a","displayName":{"text":"A"}},{"id":"b"}]}`))
	})

	results, err := client.Search(context.Background(), "tapas", Circle{Latitude: 40.4, Longitude: -3.7, RadiusMeters: 5000})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 || results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("Unexpected results: %+v", results)
	}
	if results[1].DisplayName != nil {
		t.Errorf("Missing display name should stay nil")
	}

	if gotBody["textQuery"] != "tapas" {
		t.Errorf("textQuery = %v", gotBody["textQuery"])
	}
	bias, ok := gotBody["locationBias"].(map[string]any)
	if !ok {
		t.Fatalf("locationBias missing from request: %v", gotBody)
	}
	circle := bias["circle"].(map[string]any)
	if circle["radius"] != 5000.0 {
		t.Errorf("radius = %v", circle["radius"])
	}
}

func TestSearchEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	results, err := client.Search(context.Background(), "nothing", Circle{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestDetailsRequestsFieldMask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/places/ChIJ_test" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		mask := r.Header.Get("X-Goog-FieldMask")
		for _, f := range []string{"reviews", "priceLevel", "outdoorSeating", "userRatingCount"} {
			if !strings.Contains(mask, f) {
				t.Errorf("Field mask %q missing %s", mask, f)
			}
		}
		w.Write([]byte(detailJSON))
	})

	place, err := client.Details(context.Background(), "ChIJ_test")
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if place.DisplayName == nil || place.DisplayName.Text != "Casa Lucio" {
		t.Errorf("Unexpected display name: %+v", place.DisplayName)
	}
	if place.PriceLevel == nil || *place.PriceLevel != 3 {
		t.Errorf("Unexpected price level: %v", place.PriceLevel)
	}
	if len(place.Reviews) != 2 {
		t.Errorf("Expected 2 reviews, got %d", len(place.Reviews))
	}
}

func TestDetailsErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Details(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Errorf("Error should carry API status: %v", err)
	}
}

func TestPriceLevelUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    PriceLevel
		wantErr bool
	}{
		{`"PRICE_LEVEL_MODERATE"`, 2, false},
		{`"PRICE_LEVEL_VERY_EXPENSIVE"`, 4, false},
		{`"PRICE_LEVEL_UNSPECIFIED"`, 0, false},
		{`1`, 1, false},
		{`9`, 0, true},
		{`"CHEAP"`, 0, true},
	}

	for _, tt := range tests {
		var p PriceLevel
		err := json.Unmarshal([]byte(tt.in), &p)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && p != tt.want {
			t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, p, tt.want)
		}
	}
}

func TestToRestaurant(t *testing.T) {
	var place Place
	if err := json.Unmarshal([]byte(detailJSON), &place); err != nil {
		t.Fatal(err)
	}

	r := ToRestaurant(&place)
	if r.RestaurantID != "ChIJ_test" || r.Name != "Casa Lucio" {
		t.Errorf("Unexpected identity: %+v", r)
	}
	if r.LocationLat != 40.4118 || r.LocationLng != -3.7089 {
		t.Errorf("Unexpected location: %v, %v", r.LocationLat, r.LocationLng)
	}
	if r.PriceLevel != 3 || r.Rating != 4.4 {
		t.Errorf("Unexpected price/rating: %d, %v", r.PriceLevel, r.Rating)
	}
	if !r.Attributes.DineIn || !r.Attributes.Reservable || r.Attributes.Takeout {
		t.Errorf("Unexpected attributes: %+v", r.Attributes)
	}
	if r.Attributes.UserRatingCount != 9120 {
		t.Errorf("UserRatingCount = %d", r.Attributes.UserRatingCount)
	}
}

func TestToRestaurantDefaults(t *testing.T) {
	r := ToRestaurant(&Place{ID: "bare"})
	if r.Rating != 0 || r.PriceLevel != 0 || r.Name != "" {
		t.Errorf("Missing fields should default to zero: %+v", r)
	}
}

func TestToRatings(t *testing.T) {
	var place Place
	if err := json.Unmarshal([]byte(detailJSON), &place); err != nil {
		t.Fatal(err)
	}

	ratings := ToRatings(&place)
	if len(ratings) != 2 {
		t.Fatalf("Expected 2 ratings, got %d", len(ratings))
	}

	first := ratings[0]
	if first.UserID != 1 || first.Rating != 5 || first.Date != "2024-05-10" || first.SourceUserName != "Maria G" {
		t.Errorf("Unexpected first rating: %+v", first)
	}
	if first.RestaurantID != "ChIJ_test" {
		t.Errorf("Rating not linked to restaurant: %+v", first)
	}

	second := ratings[1]
	if second.UserID != 2 || second.Rating != 0 || second.Date != "" {
		t.Errorf("Unexpected second rating: %+v", second)
	}
	if second.ReviewText != "Too loud" || second.SourceUserName != "Tom" {
		t.Errorf("Fallbacks not applied: %+v", second)
	}
}
