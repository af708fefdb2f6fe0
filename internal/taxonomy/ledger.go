// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"sort"

	"inkpress/internal/models"
)

// PopularityLevel buckets a tag's usage count for tag-cloud sizing.
type PopularityLevel string

const (
	PopularityHigh   PopularityLevel = "high"
	PopularityMedium PopularityLevel = "medium"
	PopularityLow    PopularityLevel = "low"
)

// Usage thresholds for the popularity buckets. A tag on 3+ posts is
// considered trending; 10+ puts it in the top bucket.
const (
	trendingThreshold = 3
	highThreshold     = 10
)

// IncrementUsage bumps a tag's usage counter. Called exactly once whenever
// the tag is newly attached to a post, regardless of the post's publish
// state — a drafted tag still shows up in the tag cloud.
func IncrementUsage(t *models.Tag) {
	t.UsageCount++
}

// DecrementUsage lowers a tag's usage counter, clamping at zero. A
// decrement on a tag already at zero is a no-op, not an error: the counter
// is denormalized and a stray detach must never drive it negative.
func DecrementUsage(t *models.Tag) {
	if t.UsageCount > 0 {
		t.UsageCount--
	}
}

// Classify returns the popularity bucket for a tag. The buckets are
// exhaustive and non-overlapping: high for 10+, medium for 3..9, low below.
func Classify(t *models.Tag) PopularityLevel {
	switch {
	case t.UsageCount >= highThreshold:
		return PopularityHigh
	case t.UsageCount >= trendingThreshold:
		return PopularityMedium
	default:
		return PopularityLow
	}
}

// IsTrending reports whether a tag clears the trending threshold.
func IsTrending(t *models.Tag) bool {
	return t.UsageCount >= trendingThreshold
}

// CanDeleteTag reports whether a tag can be safely removed given the posts
// currently attached to it: false if any of them is published. Drafts do
// not block deletion. Like the category guard, this is a snapshot
// predicate — re-check it inside the delete transaction.
func CanDeleteTag(attachedPosts []models.Post) bool {
	for i := range attachedPosts {
		if attachedPosts[i].IsPublished {
			return false
		}
	}
	return true
}

// byUsageDesc sorts tags by usage count descending. The sort is stable so
// ties keep their input order and results are reproducible.
func byUsageDesc(tags []models.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].UsageCount > tags[j].UsageCount
	})
}

// Popular returns the most-used active tags, up to limit. A limit <= 0
// means no truncation.
func Popular(tags []models.Tag, limit int) []models.Tag {
	var out []models.Tag
	for i := range tags {
		if tags[i].IsActive {
			out = append(out, tags[i])
		}
	}
	byUsageDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Trending returns active tags at or above the trending threshold, most
// used first, up to limit.
func Trending(tags []models.Tag, limit int) []models.Tag {
	var out []models.Tag
	for i := range tags {
		if tags[i].IsActive && tags[i].UsageCount >= trendingThreshold {
			out = append(out, tags[i])
		}
	}
	byUsageDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Featured returns active tags flagged for featured placement, most used
// first. No truncation — featuring is curated, the list is already small.
func Featured(tags []models.Tag) []models.Tag {
	var out []models.Tag
	for i := range tags {
		if tags[i].IsActive && tags[i].IsFeatured {
			out = append(out, tags[i])
		}
	}
	byUsageDesc(out)
	return out
}
