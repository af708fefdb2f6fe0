// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/taxonomy"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order,
	color, icon, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.SortOrder,
		&c.Color, &c.Icon, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by sort_order then name, with
// published direct post counts attached.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.sort_order,
		       c.color, c.icon, c.is_active, c.created_at, c.updated_at,
		       COUNT(p.id) FILTER (WHERE p.is_published) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.SortOrder,
			&c.Color, &c.Icon, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.PostCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree structure with Depth set.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list. Depth is clamped
// by the flat list itself being acyclic; cycles are rejected at write time.
func buildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FlatTree returns categories as a flat list ordered for display,
// with Depth set for indentation. Useful for admin dropdowns.
func (s *CategoryStore) FlatTree() ([]models.Category, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	var result []models.Category
	flattenTree(tree, &result)
	return result, nil
}

// flattenTree walks a category tree depth-first, appending to result.
func flattenTree(cats []models.Category, result *[]models.Category) {
	for _, c := range cats {
		*result = append(*result, c)
		if len(c.Children) > 0 {
			flattenTree(c.Children, result)
		}
	}
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// SlugExists reports whether a category with the given slug exists.
func (s *CategoryStore) SlugExists(slug string) bool {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	return err == nil && exists
}

// Create inserts a new category and returns it. The parent edge is
// validated against the current tree so cycles and over-deep chains are
// rejected before they reach the database.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if err := s.validateParentEdge(c); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, sort_order, color, icon, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.Color, c.Icon, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(c *models.Category) error {
	if err := s.validateParentEdge(c); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			sort_order = $5, color = $6, icon = $7, is_active = $8,
			updated_at = NOW()
		WHERE id = $9
	`, c.Name, c.Slug, c.Description, c.ParentID,
		c.SortOrder, c.Color, c.Icon, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// validateParentEdge checks the proposed parent edge against the current
// tree. Self-parenting, cycles, and chains past the depth ceiling all
// return taxonomy.ErrDepthCeiling.
func (s *CategoryStore) validateParentEdge(c *models.Category) error {
	if c.ParentID == nil {
		return nil
	}
	if *c.ParentID == c.ID {
		return taxonomy.ErrDepthCeiling
	}

	flat, err := s.List()
	if err != nil {
		return err
	}

	// Apply the proposed edge on top of the current state, then validate.
	found := false
	for i := range flat {
		if flat[i].ID == c.ID {
			flat[i].ParentID = c.ParentID
			found = true
		}
	}
	if !found {
		flat = append(flat, *c)
	}

	tree := taxonomy.NewTree(flat)
	if err := tree.Validate(); err != nil {
		return err
	}
	if tree.Level(*c.ParentID)+1 >= taxonomy.MaxDepth {
		return taxonomy.ErrDepthCeiling
	}
	return nil
}

// Delete removes a category by ID. The tree snapshot and the category's
// direct posts are loaded inside the transaction and the deletion guard
// re-checked there: a category with published direct posts or active
// children returns taxonomy.ErrCategoryInUse. Draft posts and surviving
// children are re-parented by the schema (ON DELETE SET NULL).
func (s *CategoryStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cats, err := listCategoriesTx(tx)
	if err != nil {
		return err
	}
	directPosts, err := loadDirectPostsTx(tx, id)
	if err != nil {
		return err
	}

	tree := taxonomy.NewTree(cats)
	if !tree.CanDelete(id, directPosts) {
		return taxonomy.ErrCategoryInUse
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return tx.Commit()
}

// listCategoriesTx loads the full category snapshot inside a transaction.
func listCategoriesTx(tx *sql.Tx) ([]models.Category, error) {
	rows, err := tx.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// loadDirectPostsTx loads the posts filed directly under a category,
// inside a transaction. Only the fields the deletion guard inspects are
// scanned.
func loadDirectPostsTx(tx *sql.Tx, categoryID uuid.UUID) ([]models.Post, error) {
	rows, err := tx.Query(`SELECT id, is_published FROM posts WHERE category_id = $1`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("load category posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.IsPublished); err != nil {
			return nil, fmt.Errorf("scan category post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ReorderItem represents a single item in a reorder request.
type ReorderItem struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Order    int        `json:"order"`
}

// Reorder updates sort_order and parent_id for multiple categories in a transaction.
func (s *CategoryStore) Reorder(items []ReorderItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		UPDATE categories SET parent_id = $1, sort_order = $2, updated_at = $3
		WHERE id = $4`)
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.Exec(item.ParentID, item.Order, now, item.ID); err != nil {
			return fmt.Errorf("reorder category %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
