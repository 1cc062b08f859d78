package selector

import (
	"sort"
	"time"

	"podscribe/internal/media"
)

// Processed answers whether an identifier already completed the pipeline.
// The state store satisfies it.
type Processed interface {
	IsProcessed(id string) bool
}

// Select filters and orders candidates for one pass.
//
// Import candidates are exempt from the lookback window and keep their
// scan order at the front of the worklist. Feed candidates inside the
// window follow, oldest publish date first; ties break on feed
// configuration order, then identifier, so a pass is deterministic for a
// given set of inputs. The window boundary is inclusive: an episode
// published exactly lookback ago is still eligible.
func Select(feedCandidates, importCandidates []media.Candidate, lookback time.Duration, now time.Time, store Processed) []media.Candidate {
	seen := make(map[string]struct{})
	eligible := func(c media.Candidate) bool {
		if c.ID == "" {
			return false
		}
		if _, dup := seen[c.ID]; dup {
			return false
		}
		if store != nil && store.IsProcessed(c.ID) {
			return false
		}
		seen[c.ID] = struct{}{}
		return true
	}

	var selected []media.Candidate
	for _, c := range importCandidates {
		if eligible(c) {
			selected = append(selected, c)
		}
	}

	cutoff := now.Add(-lookback)
	var feeds []media.Candidate
	for _, c := range feedCandidates {
		if c.PublishedAt.Before(cutoff) {
			continue
		}
		if eligible(c) {
			feeds = append(feeds, c)
		}
	}
	sort.SliceStable(feeds, func(i, j int) bool {
		a, b := feeds[i], feeds[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		if a.FeedOrder != b.FeedOrder {
			return a.FeedOrder < b.FeedOrder
		}
		return a.ID < b.ID
	})

	return append(selected, feeds...)
}
