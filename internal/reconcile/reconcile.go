// Package reconcile re-derives the synthetic reviewer and review identifiers
// whenever collected tables are merged. Reviewers are identified only by
// display name and reviews only by restaurant and text, so the numeric ids
// are recomputed deterministically from those natural keys on every run.
//
// Every function takes the full record sets and returns new slices plus the
// table it used; nothing here keeps state between calls.
package reconcile

import (
	"strconv"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// UserIDs maps a reviewer display name to its global user id
type UserIDs map[string]int

// ReviewKeys maps a transient key to the global user id it resolved to
type ReviewKeys map[string]int

// ReassignUserIDs gives every distinct source_user_name the next positive
// integer in first-encounter order and rewrites user_id on a copy of the
// ratings. Two people sharing a display name share an id.
func ReassignUserIDs(ratings []types.Rating) ([]types.Rating, UserIDs) {
	ids := make(UserIDs)
	out := make([]types.Rating, len(ratings))

	for i, r := range ratings {
		id, ok := ids[r.SourceUserName]
		if !ok {
			id = len(ids) + 1
			ids[r.SourceUserName] = id
		}
		r.UserID = id
		out[i] = r
	}

	return out, ids
}

type contentKey struct {
	restaurantID string
	text         string
}

// ReviewLookup maps the transient key of each old rating to the user id of
// the new rating with the same restaurant and review text. When several new
// ratings share that text, the one by the same reviewer wins, otherwise the
// first. Old ratings without a counterpart are absent from the table.
func ReviewLookup(oldRatings, newRatings []types.Rating) ReviewKeys {
	byContent := make(map[contentKey][]types.Rating, len(newRatings))
	for _, r := range newRatings {
		k := contentKey{r.RestaurantID, r.ReviewText}
		byContent[k] = append(byContent[k], r)
	}

	lookup := make(ReviewKeys, len(oldRatings))
	for _, r := range oldRatings {
		candidates := byContent[contentKey{r.RestaurantID, r.ReviewText}]
		if len(candidates) == 0 {
			continue
		}
		key := types.TransientKey(r.UserID, r.RestaurantID)
		if _, dup := lookup[key]; dup {
			continue
		}
		lookup[key] = sameReviewer(candidates, r.SourceUserName).UserID
	}

	return lookup
}

func sameReviewer(candidates []types.Rating, name string) types.Rating {
	for _, c := range candidates {
		if c.SourceUserName == name {
			return c
		}
	}
	return candidates[0]
}

// ReassignReviewSentimentIDs moves sentiment rows keyed by transient key
// (ReviewID holds types.TransientKey of the old user id and restaurant)
// into the reconciled user id space. Each distinct resolved (user_id,
// restaurant_id) pair gets the next review_id from 1 in first-seen order.
// Rows whose key is malformed or has no lookup entry come back with user_id
// 0, and later rows resolving to an already numbered pair keep their user
// id; both get review_id "0" so CleanInvalidIDs removes and counts them.
func ReassignReviewSentimentIDs(rows []types.ReviewSentiment, oldRatings, newRatings []types.Rating) ([]types.ReviewSentiment, ReviewKeys) {
	lookup := ReviewLookup(oldRatings, newRatings)

	assigned := make(map[string]int)
	out := make([]types.ReviewSentiment, 0, len(rows))

	for _, row := range rows {
		localID, restaurantID, ok := types.SplitTransientKey(row.ReviewID)
		if !ok {
			row.UserID = 0
			row.ReviewID = "0"
			out = append(out, row)
			continue
		}

		row.RestaurantID = restaurantID
		row.UserID = lookup[types.TransientKey(localID, restaurantID)]
		if row.UserID == 0 {
			row.ReviewID = "0"
			out = append(out, row)
			continue
		}

		resolved := types.TransientKey(row.UserID, restaurantID)
		if _, dup := assigned[resolved]; dup {
			row.ReviewID = "0"
			out = append(out, row)
			continue
		}
		assigned[resolved] = len(assigned) + 1
		row.ReviewID = strconv.Itoa(assigned[resolved])
		out = append(out, row)
	}

	return out, lookup
}

// Keyed re-derives the transient key of rows that already carry global ids,
// so previously persisted sentiment can be reconciled together with new
// rows. The ratings the ids refer to must be passed as old ratings.
func Keyed(rows []types.ReviewSentiment) []types.ReviewSentiment {
	out := make([]types.ReviewSentiment, len(rows))
	for i, row := range rows {
		row.ReviewID = types.TransientKey(row.UserID, row.RestaurantID)
		out[i] = row
	}
	return out
}

// CleanInvalidIDs drops rows that failed reconciliation and reports how
// many were removed.
func CleanInvalidIDs[T interface{ ValidIDs() bool }](rows []T) ([]T, int) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row.ValidIDs() {
			out = append(out, row)
		}
	}
	return out, len(rows) - len(out)
}
