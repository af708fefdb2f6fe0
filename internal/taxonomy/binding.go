// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// This file defines the binding rules: the side effects that must
// accompany post mutations so the denormalized counters stay consistent.
// The persistence layer invokes these at its transition points and writes
// the resulting state in the same transaction.

// AttachTag adds a tag to a post and increments its usage counter. If the
// tag is already attached nothing happens — a re-attach is not a new
// attachment and must not double-count.
func AttachTag(p *models.Post, t *models.Tag) bool {
	for i := range p.Tags {
		if p.Tags[i].ID == t.ID {
			return false
		}
	}
	IncrementUsage(t)
	p.Tags = append(p.Tags, *t)
	return true
}

// DetachTag removes a tag from a post and decrements its usage counter
// exactly once. Detaching a tag that is not attached is a no-op.
func DetachTag(p *models.Post, t *models.Tag) bool {
	for i := range p.Tags {
		if p.Tags[i].ID == t.ID {
			p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
			DecrementUsage(t)
			return true
		}
	}
	return false
}

// ReleaseTags decrements the usage counter of every tag attached to a
// post. Must run before the post itself is removed, so deletion never
// strands inflated counters.
func ReleaseTags(p *models.Post, tags []*models.Tag) {
	attached := make(map[uuid.UUID]bool, len(p.Tags))
	for i := range p.Tags {
		attached[p.Tags[i].ID] = true
	}
	for _, t := range tags {
		if attached[t.ID] {
			DecrementUsage(t)
		}
	}
	p.Tags = nil
}

// Publish transitions a post from draft to published. PublishedAt is set
// only on the first publish; re-publishing keeps the original timestamp.
// Tag and category counters are untouched — category and tag aggregates
// are computed at read time, only the author's post count is stored.
func Publish(p *models.Post, now time.Time) {
	p.IsPublished = true
	if p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}

// Unpublish returns a post to draft state. PublishedAt is preserved as a
// "last published at" record.
func Unpublish(p *models.Post) {
	p.IsPublished = false
}

// RecomputePostCount refreshes the author's denormalized published-post
// counter from a post snapshot. Invoked whenever a post owned by the
// author changes publish state or is deleted.
func RecomputePostCount(a *models.Author, posts []models.Post) {
	count := 0
	for i := range posts {
		p := &posts[i]
		if p.AuthorID == a.ID && p.IsPublished {
			count++
		}
	}
	a.PostCount = count
}

// CanEditPost reports whether an author may edit a post. Admins edit
// anything; regular authors edit only their own posts.
func CanEditPost(a *models.Author, p *models.Post) bool {
	if a.IsAdmin {
		return true
	}
	return a.IsAuthor && p.AuthorID == a.ID
}

// CanDeletePost reports whether an author may delete posts. Deletion is
// admin-only, even for the post's own author — a deliberate asymmetry
// with editing.
func CanDeletePost(a *models.Author) bool {
	return a.IsAdmin
}
