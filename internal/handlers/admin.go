// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the inkpress API.
// Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkpress/internal/cache"
	"inkpress/internal/markdown"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/slug"
	"inkpress/internal/store"
	"inkpress/internal/taxonomy"
)

// Admin groups all admin API handlers and their dependencies.
type Admin struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	tags       *store.TagStore
	authors    *store.AuthorStore
	apiCache   *cache.APICache
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(posts *store.PostStore, categories *store.CategoryStore, tags *store.TagStore, authors *store.AuthorStore, apiCache *cache.APICache) *Admin {
	return &Admin{
		posts:      posts,
		categories: categories,
		tags:       tags,
		authors:    authors,
		apiCache:   apiCache,
	}
}

// currentAuthor resolves the session to a full author record. Writes an
// error response and returns nil when the session is stale.
func (a *Admin) currentAuthor(w http.ResponseWriter, r *http.Request) *models.Author {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	author, err := a.authors.FindByID(sess.AuthorID)
	if err != nil {
		slog.Error("author lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil
	}
	if author == nil || !author.IsActive {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	return author
}

// urlUUID parses the {id} URL parameter. Writes a 400 and returns false
// on malformed input.
func urlUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// writeTaxonomyError maps taxonomy guard failures onto HTTP statuses.
func writeTaxonomyError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, taxonomy.ErrCategoryInUse), errors.Is(err, taxonomy.ErrTagInUse):
		writeError(w, http.StatusConflict, err.Error())
		return true
	case errors.Is(err, taxonomy.ErrDepthCeiling):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return true
	case errors.Is(err, taxonomy.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
		return true
	}
	return false
}

// --- Posts ---

// postRequest is the request body for creating and updating posts.
type postRequest struct {
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	ContentJSON     json.RawMessage `json:"content_json"`
	ContentMarkdown *string         `json:"content_markdown"`
	Excerpt         *string         `json:"excerpt"`
	MetaDescription *string         `json:"meta_description"`
	FeaturedImage   *string         `json:"featured_image"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	TagIDs          []uuid.UUID     `json:"tag_ids"`
	Publish         bool            `json:"publish"`
}

// validate checks the request and returns the first problem found.
func (req *postRequest) validate() string {
	var md string
	if req.ContentMarkdown != nil {
		md = *req.ContentMarkdown
	}
	if msg := validatePost(req.Title, req.Slug, md); msg != "" {
		return msg
	}
	var excerpt, metaDesc string
	if req.Excerpt != nil {
		excerpt = *req.Excerpt
	}
	if req.MetaDescription != nil {
		metaDesc = *req.MetaDescription
	}
	return validatePostMetadata(excerpt, metaDesc)
}

// derive fills the computed content fields: reading time from the
// Markdown mirror, and an excerpt when none was supplied.
func (req *postRequest) derive(p *models.Post) {
	if req.ContentMarkdown == nil {
		return
	}
	p.ReadingTime = markdown.ReadingTime(*req.ContentMarkdown)
	if p.Excerpt == nil || *p.Excerpt == "" {
		if ex := markdown.Excerpt(*req.ContentMarkdown); ex != "" {
			p.Excerpt = &ex
		}
	}
}

// ListPosts returns every post, drafts included, for the admin UI.
func (a *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}

	var (
		posts []models.Post
		err   error
	)
	if author.IsAdmin {
		posts, err = a.posts.List()
	} else {
		posts, err = a.posts.ListByAuthor(author.ID)
	}
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPost returns one post by ID, drafts included.
func (a *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if !taxonomy.CanEditPost(author, post) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// CreatePost creates a post owned by the requesting author.
func (a *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	s := req.Slug
	if s == "" {
		s = req.Title
	}
	postSlug := slug.Unique(slug.Generate(s), a.posts.SlugExists)

	post := &models.Post{
		Title:           req.Title,
		Slug:            postSlug,
		ContentJSON:     req.ContentJSON,
		ContentMarkdown: req.ContentMarkdown,
		Excerpt:         req.Excerpt,
		MetaDescription: req.MetaDescription,
		FeaturedImage:   req.FeaturedImage,
		CategoryID:      req.CategoryID,
		AuthorID:        author.ID,
		IsPublished:     req.Publish,
	}
	req.derive(post)

	created, err := a.posts.Create(post)
	if err != nil {
		slog.Error("create post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if len(req.TagIDs) > 0 {
		if err := a.posts.SetTags(created.ID, req.TagIDs); err != nil {
			slog.Error("set post tags failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	a.invalidatePostCaches(r, created.Slug)
	created, _ = a.posts.FindByID(created.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"post": created})
}

// UpdatePost modifies a post. Admins edit any post; authors only their own.
func (a *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if !taxonomy.CanEditPost(author, post) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	post.Title = req.Title
	if req.Slug != "" && req.Slug != post.Slug {
		post.Slug = slug.Unique(slug.Generate(req.Slug), a.posts.SlugExists)
	}
	post.ContentJSON = req.ContentJSON
	post.ContentMarkdown = req.ContentMarkdown
	post.Excerpt = req.Excerpt
	post.MetaDescription = req.MetaDescription
	post.FeaturedImage = req.FeaturedImage
	post.CategoryID = req.CategoryID
	req.derive(post)

	if err := a.posts.Update(post); err != nil {
		slog.Error("update post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.TagIDs != nil {
		if err := a.posts.SetTags(post.ID, req.TagIDs); err != nil {
			slog.Error("set post tags failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	a.invalidatePostCaches(r, post.Slug)
	updated, _ := a.posts.FindByID(post.ID)
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// PublishPost marks a post as published. The first publish stamps the
// publication time; republishing keeps the original timestamp.
func (a *Admin) PublishPost(w http.ResponseWriter, r *http.Request) {
	a.setPublishState(w, r, true)
}

// UnpublishPost reverts a post to draft, keeping its publication time.
func (a *Admin) UnpublishPost(w http.ResponseWriter, r *http.Request) {
	a.setPublishState(w, r, false)
}

func (a *Admin) setPublishState(w http.ResponseWriter, r *http.Request, publish bool) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if !taxonomy.CanEditPost(author, post) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if publish {
		err = a.posts.Publish(id)
	} else {
		err = a.posts.Unpublish(id)
	}
	if err != nil {
		slog.Error("change publish state failed", "error", err, "publish", publish)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.invalidatePostCaches(r, post.Slug)
	updated, _ := a.posts.FindByID(id)
	writeJSON(w, http.StatusOK, map[string]any{"post": updated})
}

// DeletePost removes a post. Only admins may delete, even the post's
// own author cannot.
func (a *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}
	if !taxonomy.CanDeletePost(author) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		slog.Error("delete post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.invalidatePostCaches(r, post.Slug)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// invalidatePostCaches clears cached reads affected by a post mutation.
// Listings, the single-post entry, category counts, and tag views all
// shift when a post changes.
func (a *Admin) invalidatePostCaches(r *http.Request, postSlug string) {
	ctx := r.Context()
	a.apiCache.InvalidatePrefix(ctx, "posts:")
	a.apiCache.InvalidatePrefix(ctx, "categories:")
	a.apiCache.InvalidatePrefix(ctx, "tags:")
	a.apiCache.Invalidate(ctx, cache.PostKey(postSlug))
}

// --- Categories ---

// categoryRequest is the request body for creating and updating categories.
type categoryRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   *int       `json:"sort_order"`
	Color       *string    `json:"color"`
	Icon        *string    `json:"icon"`
	IsActive    *bool      `json:"is_active"`
}

// ListCategories returns the full flat category list, inactive included.
func (a *Admin) ListCategories(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	cats, err := a.categories.FlatTree()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// CreateCategory creates a category. Parent edges past the depth
// ceiling are rejected.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTaxonomyItem(req.Name, req.Description); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	s := req.Slug
	if s == "" {
		s = req.Name
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else if next, err := a.categories.NextSortOrder(req.ParentID); err == nil {
		sortOrder = next
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	created, err := a.categories.Create(&models.Category{
		Name:        req.Name,
		Slug:        slug.Unique(slug.Generate(s), a.categories.SlugExists),
		Description: req.Description,
		ParentID:    req.ParentID,
		SortOrder:   sortOrder,
		Color:       req.Color,
		Icon:        req.Icon,
		IsActive:    active,
	})
	if err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		slog.Error("create category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "categories:")
	writeJSON(w, http.StatusCreated, map[string]any{"category": created})
}

// UpdateCategory modifies a category. Moving it under a parent that
// would close a cycle or break the depth ceiling is rejected.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	c, err := a.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTaxonomyItem(req.Name, req.Description); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	c.Name = req.Name
	if req.Slug != "" && req.Slug != c.Slug {
		c.Slug = slug.Unique(slug.Generate(req.Slug), a.categories.SlugExists)
	}
	c.Description = req.Description
	c.ParentID = req.ParentID
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	c.Color = req.Color
	c.Icon = req.Icon
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := a.categories.Update(c); err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		slog.Error("update category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "categories:")
	a.apiCache.InvalidatePrefix(r.Context(), "posts:")
	writeJSON(w, http.StatusOK, map[string]any{"category": c})
}

// ReorderCategories applies a bulk parent/order rearrangement from the
// admin tree editor in a single transaction.
func (a *Admin) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}

	var req struct {
		Items []store.ReorderItem `json:"items"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "No items to reorder.")
		return
	}

	if err := a.categories.Reorder(req.Items); err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		slog.Error("reorder categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "categories:")
	a.apiCache.InvalidatePrefix(r.Context(), "posts:")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reordered"})
}

// DeleteCategory removes a category. Refused with 409 while it still
// has published posts or active children.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	c, err := a.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		slog.Error("delete category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "categories:")
	a.apiCache.InvalidatePrefix(r.Context(), "posts:")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Tags ---

// tagRequest is the request body for creating and updating tags.
type tagRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Color       *string `json:"color"`
	TagType     *string `json:"tag_type"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// ListTags returns all tags, inactive included, for the admin UI.
func (a *Admin) ListTags(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	tags, err := a.tags.List()
	if err != nil {
		slog.Error("list tags failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// CreateTag creates a tag with a zero usage counter.
func (a *Admin) CreateTag(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}

	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTaxonomyItem(req.Name, req.Description); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	s := req.Slug
	if s == "" {
		s = req.Name
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	featured := false
	if req.IsFeatured != nil {
		featured = *req.IsFeatured
	}

	created, err := a.tags.Create(&models.Tag{
		Name:        req.Name,
		Slug:        slug.Unique(slug.Generate(s), a.tags.SlugExists),
		Description: req.Description,
		Color:       req.Color,
		TagType:     req.TagType,
		IsActive:    active,
		IsFeatured:  featured,
	})
	if err != nil {
		slog.Error("create tag failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "tags:")
	writeJSON(w, http.StatusCreated, map[string]any{"tag": created})
}

// UpdateTag modifies tag metadata. The usage counter is untouchable
// through this endpoint.
func (a *Admin) UpdateTag(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	t, err := a.tags.FindByID(id)
	if err != nil {
		slog.Error("find tag failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}

	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := validateTaxonomyItem(req.Name, req.Description); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	t.Name = req.Name
	if req.Slug != "" && req.Slug != t.Slug {
		t.Slug = slug.Unique(slug.Generate(req.Slug), a.tags.SlugExists)
	}
	t.Description = req.Description
	t.Color = req.Color
	t.TagType = req.TagType
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		t.IsFeatured = *req.IsFeatured
	}

	if err := a.tags.Update(t); err != nil {
		slog.Error("update tag failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "tags:")
	a.apiCache.InvalidatePrefix(r.Context(), "posts:")
	writeJSON(w, http.StatusOK, map[string]any{"tag": t})
}

// DeleteTag removes a tag. Refused with 409 while the tag is attached
// to any published post.
func (a *Admin) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if a.currentAuthor(w, r) == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	t, err := a.tags.FindByID(id)
	if err != nil {
		slog.Error("find tag failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}

	if err := a.tags.Delete(id); err != nil {
		if writeTaxonomyError(w, err) {
			return
		}
		slog.Error("delete tag failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	a.apiCache.InvalidatePrefix(r.Context(), "tags:")
	a.apiCache.InvalidatePrefix(r.Context(), "posts:")
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Authors ---

// authorRequest is the request body for creating and updating authors.
// Routes using it sit behind the admin-only middleware.
type authorRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password,omitempty"`
	DisplayName string  `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	WebsiteURL  *string `json:"website_url"`
	Github      *string `json:"github_handle"`
	Twitter     *string `json:"twitter_handle"`
	Location    *string `json:"location"`
	JobTitle    *string `json:"job_title"`
	Company     *string `json:"company"`
	IsActive    *bool   `json:"is_active"`
	IsAdmin     *bool   `json:"is_admin"`
	IsAuthor    *bool   `json:"is_author"`
}

// ListAuthors returns all author accounts.
func (a *Admin) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := a.authors.List()
	if err != nil {
		slog.Error("list authors failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": authors})
}

// CreateAuthor creates a guest author account.
func (a *Admin) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	var req authorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var bio string
	if req.Bio != nil {
		bio = *req.Bio
	}
	if msg := validateAuthor(req.Username, req.DisplayName, bio); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "Password is required.")
		return
	}

	author := &models.Author{
		Username:      req.Username,
		Email:         req.Email,
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		AvatarURL:     req.AvatarURL,
		WebsiteURL:    req.WebsiteURL,
		GithubHandle:  req.Github,
		TwitterHandle: req.Twitter,
		Location:      req.Location,
		JobTitle:      req.JobTitle,
		Company:       req.Company,
		IsActive:      true,
		IsAuthor:      true,
	}
	if req.IsActive != nil {
		author.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		author.IsAdmin = *req.IsAdmin
	}
	if req.IsAuthor != nil {
		author.IsAuthor = *req.IsAuthor
	}

	created, err := a.authors.Create(author, req.Password)
	if err != nil {
		slog.Error("create author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"author": created})
}

// UpdateAuthor modifies an author account and profile.
func (a *Admin) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	author, err := a.authors.FindByID(id)
	if err != nil {
		slog.Error("find author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if author == nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}

	var req authorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var bio string
	if req.Bio != nil {
		bio = *req.Bio
	}
	if msg := validateAuthor(req.Username, req.DisplayName, bio); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	author.Username = req.Username
	author.Email = req.Email
	author.DisplayName = req.DisplayName
	author.Bio = req.Bio
	author.AvatarURL = req.AvatarURL
	author.WebsiteURL = req.WebsiteURL
	author.GithubHandle = req.Github
	author.TwitterHandle = req.Twitter
	author.Location = req.Location
	author.JobTitle = req.JobTitle
	author.Company = req.Company
	if req.IsActive != nil {
		author.IsActive = *req.IsActive
	}
	if req.IsAdmin != nil {
		author.IsAdmin = *req.IsAdmin
	}
	if req.IsAuthor != nil {
		author.IsAuthor = *req.IsAuthor
	}

	if err := a.authors.Update(author); err != nil {
		slog.Error("update author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.Password != "" {
		if err := a.authors.SetPassword(author.ID, req.Password); err != nil {
			slog.Error("set password failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"author": author})
}

// ResetAuthorTOTP clears an author's 2FA enrollment so they re-enroll
// on next login.
func (a *Admin) ResetAuthorTOTP(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}

	author, err := a.authors.FindByID(id)
	if err != nil {
		slog.Error("find author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if author == nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := a.authors.ResetTOTP(id); err != nil {
		slog.Error("reset totp failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "2fa reset"})
}

// DeleteAuthor removes an author account. Self-deletion is refused.
func (a *Admin) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	author := a.currentAuthor(w, r)
	if author == nil {
		return
	}
	id, ok := urlUUID(w, r)
	if !ok {
		return
	}
	if id == author.ID {
		writeError(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	target, err := a.authors.FindByID(id)
	if err != nil {
		slog.Error("find author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "author not found")
		return
	}

	if err := a.authors.Delete(id); err != nil {
		slog.Error("delete author failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
