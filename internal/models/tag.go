// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag represents a flat content label. Unlike categories, tags have no
// hierarchy and cut across the category tree.
//
// UsageCount is denormalized: it counts posts the tag is attached to,
// maintained at attach/detach time regardless of publish state. The
// taxonomy package owns the maintenance rules; the store persists them.
type Tag struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Color       *string   `json:"color,omitempty"` // Hex color for badge display
	TagType     *string   `json:"tag_type,omitempty"`
	UsageCount  int       `json:"usage_count"`
	IsActive    bool      `json:"is_active"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
