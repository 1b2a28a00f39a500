package collector

import (
	"context"
	"log"
	"time"

	"github.com/ibeckermayer/tastemap/internal/places"
	"github.com/ibeckermayer/tastemap/internal/types"
)

// Directory is the places directory the collector queries
type Directory interface {
	Search(ctx context.Context, query string, bias places.Circle) ([]places.Summary, error)
	Details(ctx context.Context, id string) (*places.Place, error)
}

// Options configures search phrases, location bias and throttling
type Options struct {
	Phrases       []string
	Bias          places.Circle
	DetailDelay   time.Duration // after every detail fetch
	PhraseDelay   time.Duration // between search phrases
	SearchBackoff time.Duration // after a failed search
}

// DefaultOptions returns the production throttling with no phrases
func DefaultOptions() Options {
	return Options{
		DetailDelay:   300 * time.Millisecond,
		PhraseDelay:   500 * time.Millisecond,
		SearchBackoff: 2 * time.Second,
	}
}

// Snapshot is what is already persisted
type Snapshot struct {
	Restaurants []types.Restaurant
	Ratings     []types.Rating
}

// Result holds existing records followed by the newly collected ones
type Result struct {
	Restaurants    []types.Restaurant
	Ratings        []types.Rating
	NewRestaurants int
	NewRatings     int
}

// AddedRestaurants returns the restaurants collected in this run
func (r *Result) AddedRestaurants() []types.Restaurant {
	return r.Restaurants[len(r.Restaurants)-r.NewRestaurants:]
}

// AddedRatings returns the ratings collected in this run
func (r *Result) AddedRatings() []types.Rating {
	return r.Ratings[len(r.Ratings)-r.NewRatings:]
}

// Collector gathers restaurants and their reviews from a directory
type Collector struct {
	dir  Directory
	opts Options
}

// New creates a collector
func New(dir Directory, opts Options) *Collector {
	return &Collector{dir: dir, opts: opts}
}

// Collect fetches restaurants not yet in existing until the total reaches
// target or the search phrases run out. A restaurant id is never fetched
// twice, across runs or within one. Per-entity and per-phrase failures are
// logged and skipped; only context cancellation ends the run early, in
// which case the partial result is returned together with the error.
func (c *Collector) Collect(ctx context.Context, target int, existing Snapshot) (*Result, error) {
	res := &Result{
		Restaurants: append([]types.Restaurant(nil), existing.Restaurants...),
		Ratings:     append([]types.Rating(nil), existing.Ratings...),
	}

	quota := target - len(existing.Restaurants)
	if quota <= 0 {
		log.Printf("[collector] Already have %d restaurants (target %d), nothing to collect", len(existing.Restaurants), target)
		return res, nil
	}

	seen := make(map[string]bool, len(existing.Restaurants))
	for _, r := range existing.Restaurants {
		seen[r.RestaurantID] = true
	}

	for i, phrase := range c.opts.Phrases {
		if res.NewRestaurants >= quota {
			break
		}
		if i > 0 {
			if err := sleep(ctx, c.opts.PhraseDelay); err != nil {
				return res, err
			}
		}

		log.Printf("[collector] Searching %q (%d/%d)", phrase, i+1, len(c.opts.Phrases))
		summaries, err := c.dir.Search(ctx, phrase, c.opts.Bias)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Printf("[collector] Search %q failed: %v; backing off %v", phrase, err, c.opts.SearchBackoff)
			if err := sleep(ctx, c.opts.SearchBackoff); err != nil {
				return res, err
			}
			continue
		}

		for _, s := range summaries {
			if res.NewRestaurants >= quota {
				break
			}
			if s.ID == "" || seen[s.ID] {
				continue
			}

			place, err := c.dir.Details(ctx, s.ID)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				log.Printf("[collector] Failed to fetch %s: %v", s.ID, err)
			} else if seen[place.ID] {
				// the directory resolved this hit to a place we already hold
				seen[s.ID] = true
			} else {
				c.add(res, place)
				seen[s.ID] = true
				seen[place.ID] = true
			}

			if err := sleep(ctx, c.opts.DetailDelay); err != nil {
				return res, err
			}
		}
	}

	log.Printf("[collector] Collected %d new restaurants with %d reviews", res.NewRestaurants, res.NewRatings)
	return res, nil
}

func (c *Collector) add(res *Result, place *places.Place) {
	restaurant := places.ToRestaurant(place)
	ratings := places.ToRatings(place)

	res.Restaurants = append(res.Restaurants, restaurant)
	res.Ratings = append(res.Ratings, ratings...)
	res.NewRestaurants++
	res.NewRatings += len(ratings)

	log.Printf("[collector] Added %s (%s) with %d reviews", restaurant.Name, restaurant.RestaurantID, len(ratings))
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
