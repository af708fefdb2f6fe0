// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Post represents a blog article. Rich content from the editor is stored
// as an opaque JSON document alongside a Markdown mirror used for export,
// excerpt generation, and reading-time estimation.
type Post struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	ContentJSON     json.RawMessage `json:"content_json,omitempty"`
	ContentMarkdown *string         `json:"content_markdown,omitempty"`
	Excerpt         *string         `json:"excerpt,omitempty"`
	MetaDescription *string         `json:"meta_description,omitempty"`
	FeaturedImage   *string         `json:"featured_image,omitempty"`
	IsPublished     bool            `json:"is_published"`
	PublishedAt     *time.Time      `json:"published_at,omitempty"` // Preserved on unpublish as "last published at"
	ViewCount       int             `json:"view_count"`
	ReadingTime     int             `json:"reading_time_minutes"`
	AuthorID        uuid.UUID       `json:"author_id"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Virtual fields populated by store methods.
	Tags []Tag `json:"tags,omitempty"`
}

// IsDraft returns true if the post has not been published.
func (p *Post) IsDraft() bool {
	return !p.IsPublished
}
