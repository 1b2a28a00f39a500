package places

import (
	"math"
	"strings"
	"time"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// ToRestaurant converts a detail record. Missing rating and price level
// become 0, missing flags become false.
func ToRestaurant(p *Place) types.Restaurant {
	r := types.Restaurant{
		RestaurantID: p.ID,
		Address:      p.FormattedAddress,
		PrimaryType:  p.PrimaryType,
		Attributes: types.Attributes{
			DineIn:         boolOr(p.DineIn),
			Takeout:        boolOr(p.Takeout),
			Delivery:       boolOr(p.Delivery),
			OutdoorSeating: boolOr(p.OutdoorSeating),
			Reservable:     boolOr(p.Reservable),
		},
	}

	if p.DisplayName != nil {
		r.Name = p.DisplayName.Text
	}
	if p.Location != nil {
		r.LocationLat = p.Location.Latitude
		r.LocationLng = p.Location.Longitude
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.PriceLevel != nil {
		r.PriceLevel = int(*p.PriceLevel)
	}
	if p.UserRatingCount != nil {
		r.Attributes.UserRatingCount = *p.UserRatingCount
	}

	return r
}

// ToRatings converts the reviews attached to a place. User ids are local
// to this place, counting from 1 in review order.
func ToRatings(p *Place) []types.Rating {
	ratings := make([]types.Rating, 0, len(p.Reviews))
	for i, rv := range p.Reviews {
		rating := types.Rating{
			UserID:       i + 1,
			RestaurantID: p.ID,
			Date:         reviewDate(rv.PublishTime),
		}
		if rv.Rating != nil {
			rating.Rating = clampStars(*rv.Rating)
		}
		switch {
		case rv.Text != nil && rv.Text.Text != "":
			rating.ReviewText = rv.Text.Text
		case rv.OriginalText != nil:
			rating.ReviewText = rv.OriginalText.Text
		}
		if rv.AuthorAttribution != nil {
			rating.SourceUserName = strings.TrimSpace(rv.AuthorAttribution.DisplayName)
		}
		ratings = append(ratings, rating)
	}
	return ratings
}

func boolOr(b *bool) bool {
	return b != nil && *b
}

func clampStars(f float64) int {
	n := int(math.Round(f))
	if n < 1 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}

// reviewDate reduces an RFC 3339 timestamp to a calendar date
func reviewDate(publishTime string) string {
	if publishTime == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, publishTime)
	if err != nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
