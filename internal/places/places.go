// Package places talks to the Places API (New) and converts its payloads
// into restaurant and rating records.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ibeckermayer/tastemap/internal/googleapi"
)

const (
	DefaultBaseURL = "https://places.googleapis.com/v1"

	searchFieldMask = "places.id,places.displayName"
)

// DetailFields is the field mask requested for every place detail fetch
var DetailFields = []string{
	"id",
	"displayName",
	"formattedAddress",
	"location",
	"rating",
	"primaryType",
	"priceLevel",
	"dineIn",
	"takeout",
	"delivery",
	"outdoorSeating",
	"reservable",
	"reviews",
	"userRatingCount",
}

// ErrMissingAPIKey is returned when a client is built without credentials
var ErrMissingAPIKey = errors.New("places: api key required")

// Circle biases searches toward a point
type Circle struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Client is an HTTP client for the Places API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a client against the production endpoint
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type searchRequest struct {
	TextQuery    string        `json:"textQuery"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circleBody `json:"circle"`
}

type circleBody struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type searchResponse struct {
	Places []Summary `json:"places"`
}

// Search runs a text query biased toward the circle
func (c *Client) Search(ctx context.Context, query string, bias Circle) ([]Summary, error) {
	body := searchRequest{TextQuery: query}
	if bias.RadiusMeters > 0 {
		body.LocationBias = &locationBias{Circle: circleBody{
			Center: LatLng{Latitude: bias.Latitude, Longitude: bias.Longitude},
			Radius: bias.RadiusMeters,
		}}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/places:searchText", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp searchResponse
	if err := c.do(req, searchFieldMask, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	return resp.Places, nil
}

// Details fetches the full record of one place including its reviews
func (c *Client) Details(ctx context.Context, id string) (*Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/places/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var place Place
	if err := c.do(req, strings.Join(DetailFields, ","), &place); err != nil {
		return nil, fmt.Errorf("details %s: %w", id, err)
	}
	if place.ID == "" {
		place.ID = id
	}

	return &place, nil
}

func (c *Client) do(req *http.Request, fieldMask string, out any) error {
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	body, err := googleapi.Do(c.httpClient(), req, "Places API", c.APIKey)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse Places response: %w", err)
	}

	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
