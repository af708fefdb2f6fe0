// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a hierarchical content category. Posts can have at
// most one category assigned. The hierarchy is a shallow forest: each
// category holds a single edge to its parent, and children are derived by
// the taxonomy package from that edge — never stored independently.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	Color       *string    `json:"color,omitempty"` // Hex color for UI display
	Icon        *string    `json:"icon,omitempty"`  // Icon identifier, e.g. "code", "book"
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by the taxonomy package or store methods.
	Children   []Category `json:"children,omitempty"`
	Depth      int        `json:"depth"`
	Breadcrumb []string   `json:"breadcrumb,omitempty"`
	PostCount  int        `json:"post_count"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
