// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/taxonomy"
)

// TagStore manages tags and their denormalized usage counters.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

const tagColumns = `id, name, slug, description, color, tag_type,
	usage_count, is_active, is_featured, created_at, updated_at`

// scanTag scans a row into a Tag struct.
func scanTag(scanner interface{ Scan(...any) error }) (*models.Tag, error) {
	var t models.Tag
	err := scanner.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Description, &t.Color, &t.TagType,
		&t.UsageCount, &t.IsActive, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tags ordered by usage descending then name.
func (s *TagStore) List() ([]models.Tag, error) {
	return s.query(`SELECT ` + tagColumns + ` FROM tags ORDER BY usage_count DESC, name`)
}

// ListActive returns active tags ordered by usage descending then name.
func (s *TagStore) ListActive() ([]models.Tag, error) {
	return s.query(`SELECT ` + tagColumns + ` FROM tags WHERE is_active ORDER BY usage_count DESC, name`)
}

func (s *TagStore) query(q string, args ...any) ([]models.Tag, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	return tags, rows.Err()
}

// FindByID retrieves a tag by ID. Returns nil if not found.
func (s *TagStore) FindByID(id uuid.UUID) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by id: %w", err)
	}
	return t, nil
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(slug string) (*models.Tag, error) {
	row := s.db.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE slug = $1`, slug)
	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// SlugExists reports whether a tag with the given slug exists.
func (s *TagStore) SlugExists(slug string) bool {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM tags WHERE slug = $1)`, slug).Scan(&exists)
	return err == nil && exists
}

// Create inserts a new tag and returns it. Usage always starts at zero.
func (s *TagStore) Create(t *models.Tag) (*models.Tag, error) {
	row := s.db.QueryRow(`
		INSERT INTO tags (name, slug, description, color, tag_type, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+tagColumns,
		t.Name, t.Slug, t.Description, t.Color, t.TagType, t.IsActive, t.IsFeatured,
	)
	result, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return result, nil
}

// Update modifies tag metadata. The usage counter is never written here;
// only attach and detach operations move it.
func (s *TagStore) Update(t *models.Tag) error {
	_, err := s.db.Exec(`
		UPDATE tags SET
			name = $1, slug = $2, description = $3, color = $4,
			tag_type = $5, is_active = $6, is_featured = $7, updated_at = NOW()
		WHERE id = $8
	`, t.Name, t.Slug, t.Description, t.Color,
		t.TagType, t.IsActive, t.IsFeatured, t.ID)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return nil
}

// Delete removes a tag by ID. The tag's attachments are loaded inside
// the transaction and the deletion guard re-checked there through
// taxonomy.CanDeleteTag: a tag still attached to a published post returns
// taxonomy.ErrTagInUse. Attachments to drafts are released by the schema
// cascade.
func (s *TagStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT p.id, p.is_published
		FROM post_tags pt
		JOIN posts p ON p.id = pt.post_id
		WHERE pt.tag_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("load tag attachments: %w", err)
	}
	var attached []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.IsPublished); err != nil {
			rows.Close()
			return fmt.Errorf("scan tag attachment: %w", err)
		}
		attached = append(attached, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if !taxonomy.CanDeleteTag(attached) {
		return taxonomy.ErrTagInUse
	}

	if _, err := tx.Exec(`DELETE FROM tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return tx.Commit()
}

// RecountUsage resets a tag's usage counter from the join table. This is
// a repair operation; normal counter movement happens inside the post
// store's attach/detach transactions.
func (s *TagStore) RecountUsage(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE tags SET usage_count = (
			SELECT COUNT(*) FROM post_tags WHERE tag_id = $1
		), updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("recount tag usage: %w", err)
	}
	return nil
}
