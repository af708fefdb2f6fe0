// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/markdown"
	"inkpress/internal/models"
	"inkpress/internal/store"
	"inkpress/internal/taxonomy"
)

// Public groups handlers for the public JSON API. It checks the Valkey
// response cache before hitting the database, and stores serialized
// results on miss. Admin mutations invalidate the affected key families.
type Public struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	tags       *store.TagStore
	authors    *store.AuthorStore
	apiCache   *cache.APICache
}

// NewPublic creates a new Public handler group.
func NewPublic(posts *store.PostStore, categories *store.CategoryStore, tags *store.TagStore, authors *store.AuthorStore, apiCache *cache.APICache) *Public {
	return &Public{
		posts:      posts,
		categories: categories,
		tags:       tags,
		authors:    authors,
		apiCache:   apiCache,
	}
}

// ListPosts returns published posts, newest first. Optional query
// filters: ?category=<slug> narrows to a category and its subtree,
// ?tag=<slug> narrows to posts carrying the tag.
func (p *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categorySlug := r.URL.Query().Get("category")
	tagSlug := r.URL.Query().Get("tag")

	key := cache.PostsKey(categorySlug, tagSlug)
	if cached, ok := p.apiCache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	posts, err := p.posts.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if categorySlug != "" {
		posts, err = p.filterByCategory(posts, categorySlug)
		if err != nil {
			slog.Error("category filter failed", "error", err, "category", categorySlug)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if posts == nil {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
	}

	if tagSlug != "" {
		posts = filterByTag(posts, tagSlug)
	}

	body, err := json.Marshal(map[string]any{"posts": posts, "total": len(posts)})
	if err != nil {
		slog.Error("marshal posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.apiCache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// filterByCategory keeps posts whose category is the named category or
// any active descendant of it. Returns nil when the slug is unknown.
func (p *Public) filterByCategory(posts []models.Post, categorySlug string) ([]models.Post, error) {
	target, err := p.categories.FindBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	if target == nil || !target.IsActive {
		return nil, nil
	}

	flat, err := p.categories.List()
	if err != nil {
		return nil, err
	}
	tree := taxonomy.NewTree(flat)

	allowed := map[uuid.UUID]bool{target.ID: true}
	for _, d := range tree.Descendants(target.ID) {
		allowed[d.ID] = true
	}

	filtered := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		if post.CategoryID != nil && allowed[*post.CategoryID] {
			filtered = append(filtered, post)
		}
	}
	return filtered, nil
}

// filterByTag keeps posts carrying the named tag.
func filterByTag(posts []models.Post, tagSlug string) []models.Post {
	filtered := make([]models.Post, 0, len(posts))
	for _, post := range posts {
		for _, t := range post.Tags {
			if t.Slug == tagSlug {
				filtered = append(filtered, post)
				break
			}
		}
	}
	return filtered
}

// GetPost returns a single published post by slug and counts the view.
// The markdown body is rendered to HTML in the response so clients can
// display the article without their own renderer; the rendered form is
// cached together with the post.
func (p *Public) GetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	// The view counter moves on every read, cached or not.
	if err := p.posts.IncrementViewCountBySlug(slugParam); err != nil {
		slog.Warn("increment view count failed", "error", err, "slug", slugParam)
	}

	key := cache.PostKey(slugParam)
	if cached, ok := p.apiCache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	post, err := p.posts.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find post by slug failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	resp := map[string]any{"post": post}
	if post.ContentMarkdown != nil {
		html, err := markdown.ToHTML(*post.ContentMarkdown)
		if err != nil {
			slog.Error("render post markdown failed", "error", err, "slug", slugParam)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp["content_html"] = html
	}
	if author, err := p.authors.FindByID(post.AuthorID); err == nil && author != nil {
		resp["author"] = map[string]any{
			"username":     author.Username,
			"display_name": author.DisplayName,
			"byline":       author.Byline(),
			"avatar_url":   author.AvatarURL,
		}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		slog.Error("marshal post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.apiCache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// ListCategories returns the active category tree with computed depth,
// breadcrumb, and recursive published post counts.
func (p *Public) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := cache.CategoriesKey()
	if cached, ok := p.apiCache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	flat, err := p.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	published, err := p.posts.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tree := taxonomy.NewTree(flat)
	nested := p.buildPublicTree(tree, flat, nil, published)

	body, err := json.Marshal(map[string]any{"categories": nested})
	if err != nil {
		slog.Error("marshal categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.apiCache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// buildPublicTree assembles the nested active-only category tree with
// computed fields. Inactive categories hide their whole subtree.
func (p *Public) buildPublicTree(tree *taxonomy.Tree, flat []models.Category, parentID *uuid.UUID, published []models.Post) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if !ptrEqual(c.ParentID, parentID) || !c.IsActive {
			continue
		}
		c.Depth = tree.Level(c.ID)
		c.Breadcrumb = tree.Breadcrumb(c.ID)
		c.PostCount = tree.PostCount(c.ID, published)
		c.Children = p.buildPublicTree(tree, flat, &c.ID, published)
		result = append(result, c)
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

// GetCategory returns a single active category by slug with computed
// depth, breadcrumb, and recursive published post count.
func (p *Public) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	key := cache.CategoryKey(slugParam)
	if cached, ok := p.apiCache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	c, err := p.categories.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find category by slug failed", "error", err, "slug", slugParam)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil || !c.IsActive {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	flat, err := p.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	published, err := p.posts.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tree := taxonomy.NewTree(flat)
	c.Depth = tree.Level(c.ID)
	c.Breadcrumb = tree.Breadcrumb(c.ID)
	c.PostCount = tree.PostCount(c.ID, published)
	c.Children = p.buildPublicTree(tree, flat, &c.ID, published)

	body, err := json.Marshal(map[string]any{"category": c})
	if err != nil {
		slog.Error("marshal category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.apiCache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// tagView is a tag enriched with its computed popularity classification.
type tagView struct {
	models.Tag
	Popularity taxonomy.PopularityLevel `json:"popularity"`
	Trending   bool                     `json:"trending"`
}

// ListTags returns active tags. The ?view= parameter selects a ledger
// view: "popular" (by usage), "trending" (above the trending threshold),
// or "featured" (editorially pinned). Default is all active tags.
// ?limit= caps popular and trending results.
func (p *Public) ListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "all"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	key := cache.TagsKey(view + ":" + strconv.Itoa(limit))
	if cached, ok := p.apiCache.Get(ctx, key); ok {
		writeJSONBytes(w, http.StatusOK, cached)
		return
	}

	tags, err := p.tags.ListActive()
	if err != nil {
		slog.Error("list tags failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch view {
	case "all":
		// Keep everything active.
	case "popular":
		tags = taxonomy.Popular(tags, limit)
	case "trending":
		tags = taxonomy.Trending(tags, limit)
	case "featured":
		tags = taxonomy.Featured(tags)
	default:
		writeError(w, http.StatusBadRequest, "unknown view")
		return
	}

	views := make([]tagView, 0, len(tags))
	for _, t := range tags {
		views = append(views, tagView{
			Tag:        t,
			Popularity: taxonomy.Classify(&t),
			Trending:   taxonomy.IsTrending(&t),
		})
	}

	body, err := json.Marshal(map[string]any{"tags": views})
	if err != nil {
		slog.Error("marshal tags failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.apiCache.Set(ctx, key, body)
	writeJSONBytes(w, http.StatusOK, body)
}

// GetAuthor returns a public author profile by username.
func (p *Public) GetAuthor(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	author, err := p.authors.FindByUsername(username)
	if err != nil {
		slog.Error("find author failed", "error", err, "username", username)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if author == nil || !author.IsActive {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"author": author,
		"byline": author.Byline(),
	})
}
