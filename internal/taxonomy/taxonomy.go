// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the content classification rules of the blog:
// the category tree, the tag usage ledger, and the side effects that bind
// posts to both. Everything here is a pure computation over caller-supplied
// snapshots — the package performs no I/O and holds no locks. Callers must
// re-check guards inside the same transaction they use to persist a change.
package taxonomy

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

// MaxDepth is the ceiling on category tree traversal depth. It is a
// defensive bound against accidental cycles or runaway nesting, not a
// business rule: a personal blog rarely needs more than 2-3 levels.
const MaxDepth = 10

var (
	// ErrDepthCeiling is reported when a tree walk hits MaxDepth, which
	// indicates a cycle or corrupted parent edges.
	ErrDepthCeiling = errors.New("taxonomy: category depth ceiling exceeded")

	// ErrCategoryInUse rejects deletion of a category that still has
	// published posts or active children.
	ErrCategoryInUse = errors.New("taxonomy: category has published posts or active children")

	// ErrTagInUse rejects deletion of a tag attached to published posts.
	ErrTagInUse = errors.New("taxonomy: tag is attached to published posts")

	// ErrForbidden rejects a post mutation the author is not permitted
	// to perform.
	ErrForbidden = errors.New("taxonomy: operation not permitted for this author")
)

// Tree is an index over a snapshot of categories. The parent edge on each
// category is the single source of truth; the child index is derived from
// it at construction time so the two views cannot drift apart.
type Tree struct {
	byID     map[uuid.UUID]*models.Category
	children map[uuid.UUID][]*models.Category
}

// NewTree builds a Tree from a category snapshot. Child lists are ordered
// by sort order, then name, so traversal results are deterministic.
func NewTree(categories []models.Category) *Tree {
	t := &Tree{
		byID:     make(map[uuid.UUID]*models.Category, len(categories)),
		children: make(map[uuid.UUID][]*models.Category),
	}
	for i := range categories {
		c := &categories[i]
		t.byID[c.ID] = c
	}
	for _, c := range t.byID {
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
		}
	}
	for parentID := range t.children {
		kids := t.children[parentID]
		sort.SliceStable(kids, func(i, j int) bool {
			if kids[i].SortOrder != kids[j].SortOrder {
				return kids[i].SortOrder < kids[j].SortOrder
			}
			return kids[i].Name < kids[j].Name
		})
	}
	return t
}

// Lookup returns the category with the given ID, or nil if it is not part
// of this snapshot.
func (t *Tree) Lookup(id uuid.UUID) *models.Category {
	return t.byID[id]
}

// Children returns the direct children of a category, active or not.
func (t *Tree) Children(id uuid.UUID) []models.Category {
	kids := t.children[id]
	out := make([]models.Category, len(kids))
	for i, c := range kids {
		out[i] = *c
	}
	return out
}

// Level returns the depth of a category: 0 for roots, 1 + parent level
// otherwise. The walk follows parent edges upward and stops at MaxDepth,
// so it terminates even if a cycle has crept into the data. Hitting the
// ceiling is logged — it means the tree is corrupt, not that the category
// is deep by design.
func (t *Tree) Level(id uuid.UUID) int {
	level := 0
	current := t.byID[id]
	for current != nil && current.ParentID != nil {
		if level >= MaxDepth {
			slog.Warn("category depth ceiling hit during level walk",
				"category_id", id, "ceiling", MaxDepth)
			break
		}
		level++
		current = t.byID[*current.ParentID]
	}
	return level
}

// Breadcrumb returns the category names from the root down to the given
// category, inclusive. A chain of depth MaxDepth yields MaxDepth+1 names
// (len = Level + 1); the walk gives up only past that point, which means
// a cycle.
func (t *Tree) Breadcrumb(id uuid.UUID) []string {
	var trail []string
	current := t.byID[id]
	for current != nil {
		if len(trail) > MaxDepth {
			slog.Warn("category depth ceiling hit during breadcrumb walk",
				"category_id", id, "ceiling", MaxDepth)
			break
		}
		trail = append([]string{current.Name}, trail...)
		if current.ParentID == nil {
			break
		}
		current = t.byID[*current.ParentID]
	}
	return trail
}

// Descendants returns all active transitive children of a category,
// depth-first. Inactive children are pruned together with their entire
// subtrees — an inactive node hides everything beneath it.
func (t *Tree) Descendants(id uuid.UUID) []models.Category {
	type frame struct {
		id    uuid.UUID
		depth int
	}
	var result []models.Category
	stack := []frame{{id: id, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth >= MaxDepth {
			slog.Warn("category depth ceiling hit during descendants walk",
				"category_id", id, "ceiling", MaxDepth)
			continue
		}
		kids := t.children[f.id]
		// Push in reverse so the sorted order comes off the stack first.
		for i := len(kids) - 1; i >= 0; i-- {
			child := kids[i]
			if !child.IsActive {
				continue
			}
			result = append(result, *child)
			stack = append(stack, frame{id: child.ID, depth: f.depth + 1})
		}
	}
	return result
}

// subtreeIDs collects the IDs of a category and all its transitive
// children, regardless of active flags, bounded by MaxDepth.
func (t *Tree) subtreeIDs(id uuid.UUID) map[uuid.UUID]bool {
	type frame struct {
		id    uuid.UUID
		depth int
	}
	ids := map[uuid.UUID]bool{id: true}
	stack := []frame{{id: id, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth >= MaxDepth {
			continue
		}
		for _, child := range t.children[f.id] {
			if ids[child.ID] {
				continue
			}
			ids[child.ID] = true
			stack = append(stack, frame{id: child.ID, depth: f.depth + 1})
		}
	}
	return ids
}

// PostCount returns the number of published posts in a category and all
// its transitive children. Unlike Descendants, the child active flag is
// ignored here: a post filed under a hidden subcategory still counts.
// This is a read-time aggregate over the supplied post snapshot, not a
// stored counter — callers wanting it cheap should cache the result.
func (t *Tree) PostCount(id uuid.UUID, posts []models.Post) int {
	ids := t.subtreeIDs(id)
	count := 0
	for i := range posts {
		p := &posts[i]
		if p.IsPublished && p.CategoryID != nil && ids[*p.CategoryID] {
			count++
		}
	}
	return count
}

// CanDelete reports whether a category can be safely removed: it must
// have no published post attached directly and no active child. The check
// is a pure predicate over the supplied snapshot; the caller must
// re-evaluate it inside the transaction that performs the delete.
func (t *Tree) CanDelete(id uuid.UUID, directPosts []models.Post) bool {
	for i := range directPosts {
		if directPosts[i].IsPublished {
			return false
		}
	}
	for _, child := range t.children[id] {
		if child.IsActive {
			return false
		}
	}
	return true
}

// Validate walks every category's parent chain and reports ErrDepthCeiling
// if any chain exceeds MaxDepth, which means the forest contains a cycle
// or pathological nesting. Run after bulk imports or re-parenting.
func (t *Tree) Validate() error {
	for _, c := range t.byID {
		steps := 0
		current := c
		for current.ParentID != nil {
			if steps >= MaxDepth {
				return ErrDepthCeiling
			}
			parent := t.byID[*current.ParentID]
			if parent == nil {
				break // Dangling parent edge; tolerated, the node acts as a root.
			}
			steps++
			current = parent
		}
	}
	return nil
}
