// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkpress/internal/models"
	"inkpress/internal/taxonomy"
)

// PostStore handles all post-related database operations, including the
// post_tags join table and the usage counters that hang off it.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content_json, content_markdown, excerpt,
	meta_description, featured_image, is_published, published_at, view_count,
	reading_time_minutes, author_id, category_id, created_at, updated_at`

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.ContentJSON, &p.ContentMarkdown, &p.Excerpt,
		&p.MetaDescription, &p.FeaturedImage, &p.IsPublished, &p.PublishedAt, &p.ViewCount,
		&p.ReadingTime, &p.AuthorID, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all posts ordered by creation date descending, with tags
// attached. Used by the admin surface.
func (s *PostStore) List() ([]models.Post, error) {
	return s.queryWithTags(`SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`)
}

// ListPublished returns all published posts ordered by publish date
// descending, with tags attached.
func (s *PostStore) ListPublished() ([]models.Post, error) {
	return s.queryWithTags(`
		SELECT ` + postColumns + ` FROM posts
		WHERE is_published
		ORDER BY published_at DESC NULLS LAST`)
}

// ListByAuthor returns all posts by the given author, newest first.
func (s *PostStore) ListByAuthor(authorID uuid.UUID) ([]models.Post, error) {
	return s.queryWithTags(`
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC`, authorID)
}

func (s *PostStore) queryWithTags(q string, args ...any) ([]models.Post, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachTags populates the Tags field for a slice of posts in one query.
func (s *PostStore) attachTags(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	placeholders := make([]string, len(posts))
	args := make([]any, len(posts))
	for i := range posts {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = posts[i].ID
	}

	rows, err := s.db.Query(`
		SELECT pt.post_id, `+prefixColumns("t", tagColumns)+`
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY t.name`, args...)
	if err != nil {
		return fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()

	byPost := make(map[uuid.UUID][]models.Tag)
	for rows.Next() {
		var postID uuid.UUID
		var t models.Tag
		err := rows.Scan(
			&postID,
			&t.ID, &t.Name, &t.Slug, &t.Description, &t.Color, &t.TagType,
			&t.UsageCount, &t.IsActive, &t.IsFeatured, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		byPost[postID] = append(byPost[postID], t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return nil
}

// prefixColumns prefixes every column in a comma-separated list with a
// table alias, for use in joins.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// FindByID retrieves a post by UUID with tags attached. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	if err := s.loadTags(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindBySlug retrieves a published post by slug with tags attached.
// Returns nil if not found. Used for public article pages.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND is_published`, slug)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	if err := s.loadTags(p); err != nil {
		return nil, err
	}
	return p, nil
}

// loadTags populates the Tags field for a single post.
func (s *PostStore) loadTags(p *models.Post) error {
	posts := []models.Post{*p}
	if err := s.attachTags(posts); err != nil {
		return err
	}
	p.Tags = posts[0].Tags
	return nil
}

// SlugExists reports whether a post with the given slug exists.
func (s *PostStore) SlugExists(slug string) bool {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	return err == nil && exists
}

// Create inserts a new post and returns it with the generated ID.
// Creating a post already published runs the publish transition first,
// so published_at is stamped the same way a later publish would.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	if p.IsPublished {
		taxonomy.Publish(p, time.Now())
	}

	row := s.db.QueryRow(`
		INSERT INTO posts (title, slug, content_json, content_markdown, excerpt,
		                   meta_description, featured_image, is_published, published_at,
		                   reading_time_minutes, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.ContentJSON, p.ContentMarkdown, p.Excerpt,
		p.MetaDescription, p.FeaturedImage, p.IsPublished, p.PublishedAt,
		p.ReadingTime, p.AuthorID, p.CategoryID,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if result.IsPublished {
		if err := s.recomputeAuthorCount(result.AuthorID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Update modifies an existing post's content fields. Publish state is
// managed by Publish and Unpublish; a published_at already set is never
// overwritten here.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, content_json = $3, content_markdown = $4,
			excerpt = $5, meta_description = $6, featured_image = $7,
			reading_time_minutes = $8, category_id = $9, updated_at = NOW()
		WHERE id = $10
	`, p.Title, p.Slug, p.ContentJSON, p.ContentMarkdown,
		p.Excerpt, p.MetaDescription, p.FeaturedImage,
		p.ReadingTime, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Publish marks a post as published. The post's current publish state is
// loaded inside the transaction, the transition runs through
// taxonomy.Publish (first publish stamps published_at; republishing after
// an unpublish keeps the original timestamp), and the result is written
// back. The author's published post count is refreshed in the same
// transaction.
func (s *PostStore) Publish(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := loadPublishStateTx(tx, id)
	if err != nil {
		return fmt.Errorf("publish post: %w", err)
	}

	taxonomy.Publish(p, time.Now())

	if err := persistPublishStateTx(tx, p); err != nil {
		return fmt.Errorf("publish post: %w", err)
	}
	if err := recomputeAuthorCountTx(tx, p.AuthorID); err != nil {
		return err
	}
	return tx.Commit()
}

// Unpublish reverts a post to draft via taxonomy.Unpublish; published_at
// is preserved as the last-published time. The author's published post
// count is refreshed in the same transaction.
func (s *PostStore) Unpublish(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := loadPublishStateTx(tx, id)
	if err != nil {
		return fmt.Errorf("unpublish post: %w", err)
	}

	taxonomy.Unpublish(p)

	if err := persistPublishStateTx(tx, p); err != nil {
		return fmt.Errorf("unpublish post: %w", err)
	}
	if err := recomputeAuthorCountTx(tx, p.AuthorID); err != nil {
		return err
	}
	return tx.Commit()
}

// loadPublishStateTx loads the fields a publish transition reads and
// writes, inside the transaction that will persist the result.
func loadPublishStateTx(tx *sql.Tx, id uuid.UUID) (*models.Post, error) {
	var p models.Post
	err := tx.QueryRow(`
		SELECT id, author_id, is_published, published_at FROM posts WHERE id = $1
	`, id).Scan(&p.ID, &p.AuthorID, &p.IsPublished, &p.PublishedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// persistPublishStateTx writes a post's publish state back.
func persistPublishStateTx(tx *sql.Tx, p *models.Post) error {
	_, err := tx.Exec(`
		UPDATE posts SET is_published = $1, published_at = $2, updated_at = NOW()
		WHERE id = $3
	`, p.IsPublished, p.PublishedAt, p.ID)
	return err
}

// SetTags replaces a post's tag set. The current attachments and the
// affected tag rows are loaded inside one transaction, the attach and
// detach rules compute the new counter values, and the resulting state is
// written back — so each tag's usage counter moves exactly once per
// attach or detach, never twice for a tag that stays.
func (s *PostStore) SetTags(postID uuid.UUID, tagIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := loadAttachedTagsTx(tx, postID)
	if err != nil {
		return err
	}

	tagByID := make(map[uuid.UUID]*models.Tag, len(current)+len(tagIDs))
	for i := range current {
		tagByID[current[i].ID] = &current[i]
	}
	for _, id := range tagIDs {
		if tagByID[id] != nil {
			continue
		}
		t, err := loadTagTx(tx, id)
		if err != nil {
			return err
		}
		tagByID[id] = t
	}

	post := &models.Post{ID: postID, Tags: append([]models.Tag(nil), current...)}

	// Attach the desired tags; one already attached is a no-op.
	for _, id := range tagIDs {
		t := tagByID[id]
		if !taxonomy.AttachTag(post, t) {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, id); err != nil {
			return fmt.Errorf("attach tag %s: %w", id, err)
		}
		if err := persistTagUsageTx(tx, t); err != nil {
			return err
		}
	}

	desired := make(map[uuid.UUID]bool, len(tagIDs))
	for _, id := range tagIDs {
		desired[id] = true
	}

	// Detach what is attached but no longer desired.
	for i := range current {
		t := &current[i]
		if desired[t.ID] {
			continue
		}
		if !taxonomy.DetachTag(post, t) {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1 AND tag_id = $2`, postID, t.ID); err != nil {
			return fmt.Errorf("detach tag %s: %w", t.ID, err)
		}
		if err := persistTagUsageTx(tx, t); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a post. The attached tags are loaded inside the
// transaction, their usage counters released through
// taxonomy.ReleaseTags and written back, then the join rows go with the
// post via the schema cascade. The author's published post count is
// refreshed afterwards.
func (s *PostStore) Delete(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := loadAttachedTagsTx(tx, id)
	if err != nil {
		return err
	}

	post := &models.Post{ID: id, Tags: append([]models.Tag(nil), current...)}
	tags := make([]*models.Tag, len(current))
	for i := range current {
		tags[i] = &current[i]
	}
	taxonomy.ReleaseTags(post, tags)
	for _, t := range tags {
		if err := persistTagUsageTx(tx, t); err != nil {
			return err
		}
	}

	var authorID uuid.UUID
	err = tx.QueryRow(`DELETE FROM posts WHERE id = $1 RETURNING author_id`, id).Scan(&authorID)
	if err == sql.ErrNoRows {
		return tx.Commit()
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := recomputeAuthorCountTx(tx, authorID); err != nil {
		return err
	}
	return tx.Commit()
}

// IncrementViewCount bumps a published post's view counter.
func (s *PostStore) IncrementViewCount(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE posts SET view_count = view_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// IncrementViewCountBySlug bumps the view counter for a published post
// without a prior lookup. A miss is a no-op.
func (s *PostStore) IncrementViewCountBySlug(slug string) error {
	_, err := s.db.Exec(`
		UPDATE posts SET view_count = view_count + 1 WHERE slug = $1 AND is_published
	`, slug)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// recomputeAuthorCount refreshes the author's published post count in
// its own transaction.
func (s *PostStore) recomputeAuthorCount(authorID uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := recomputeAuthorCountTx(tx, authorID); err != nil {
		return err
	}
	return tx.Commit()
}

// recomputeAuthorCountTx refreshes the author's denormalized published
// post count: the author's posts are loaded inside the transaction, the
// counter recomputed via taxonomy.RecomputePostCount, and the result
// written back.
func recomputeAuthorCountTx(tx *sql.Tx, authorID uuid.UUID) error {
	rows, err := tx.Query(`SELECT id, author_id, is_published FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return fmt.Errorf("load author posts: %w", err)
	}
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.IsPublished); err != nil {
			rows.Close()
			return fmt.Errorf("scan author post: %w", err)
		}
		posts = append(posts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	author := models.Author{ID: authorID}
	taxonomy.RecomputePostCount(&author, posts)

	_, err = tx.Exec(`
		UPDATE authors SET post_count = $1, updated_at = NOW() WHERE id = $2
	`, author.PostCount, author.ID)
	if err != nil {
		return fmt.Errorf("recompute author post count: %w", err)
	}
	return nil
}

// loadAttachedTagsTx loads the tags currently attached to a post, inside
// a transaction.
func loadAttachedTagsTx(tx *sql.Tx, postID uuid.UUID) ([]models.Tag, error) {
	rows, err := tx.Query(`
		SELECT `+prefixColumns("t", tagColumns)+`
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = $1
		ORDER BY t.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("load current tags: %w", err)
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

// loadTagTx loads a single tag row inside a transaction.
func loadTagTx(tx *sql.Tx, id uuid.UUID) (*models.Tag, error) {
	row := tx.QueryRow(`SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	t, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("load tag %s: %w", id, err)
	}
	return t, nil
}

// persistTagUsageTx writes a tag's recomputed usage counter back.
func persistTagUsageTx(tx *sql.Tx, t *models.Tag) error {
	_, err := tx.Exec(`
		UPDATE tags SET usage_count = $1, updated_at = NOW() WHERE id = $2
	`, t.UsageCount, t.ID)
	if err != nil {
		return fmt.Errorf("update tag usage %s: %w", t.ID, err)
	}
	return nil
}
