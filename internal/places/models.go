package places

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload shapes of the Places API. Every field the API may omit is a
// pointer or has a usable zero value; defaults are applied in convert.go.

// LocalizedText is a text value with its language
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Summary is a search hit
type Summary struct {
	ID          string         `json:"id"`
	DisplayName *LocalizedText `json:"displayName,omitempty"`
}

// Place is a full detail record
type Place struct {
	ID               string         `json:"id"`
	DisplayName      *LocalizedText `json:"displayName,omitempty"`
	FormattedAddress string         `json:"formattedAddress,omitempty"`
	Location         *LatLng        `json:"location,omitempty"`
	Rating           *float64       `json:"rating,omitempty"`
	PrimaryType      string         `json:"primaryType,omitempty"`
	PriceLevel       *PriceLevel    `json:"priceLevel,omitempty"`
	DineIn           *bool          `json:"dineIn,omitempty"`
	Takeout          *bool          `json:"takeout,omitempty"`
	Delivery         *bool          `json:"delivery,omitempty"`
	OutdoorSeating   *bool          `json:"outdoorSeating,omitempty"`
	Reservable       *bool          `json:"reservable,omitempty"`
	UserRatingCount  *int           `json:"userRatingCount,omitempty"`
	Reviews          []Review       `json:"reviews,omitempty"`
}

// Review is one review attached to a place
type Review struct {
	Name              string             `json:"name,omitempty"`
	Rating            *float64           `json:"rating,omitempty"`
	Text              *LocalizedText     `json:"text,omitempty"`
	OriginalText      *LocalizedText     `json:"originalText,omitempty"`
	AuthorAttribution *AuthorAttribution `json:"authorAttribution,omitempty"`
	PublishTime       string             `json:"publishTime,omitempty"`
}

// AuthorAttribution identifies a reviewer
type AuthorAttribution struct {
	DisplayName string `json:"displayName"`
	URI         string `json:"uri,omitempty"`
	PhotoURI    string `json:"photoUri,omitempty"`
}

// PriceLevel is 0-4. The API sends an enum name; numeric values are
// accepted too.
type PriceLevel int

var priceLevels = map[string]PriceLevel{
	"PRICE_LEVEL_UNSPECIFIED":    0,
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		level, ok := priceLevels[strings.ToUpper(name)]
		if !ok {
			return fmt.Errorf("unknown price level %q", name)
		}
		*p = level
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid price level %s", string(data))
	}
	if n < 0 || n > 4 {
		return fmt.Errorf("price level %d out of range", n)
	}
	*p = PriceLevel(n)
	return nil
}
