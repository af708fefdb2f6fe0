// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

func TestPostStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	slug := "test-post-create"
	username := "test-post-create-author"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)

	created, err := s.Create(&models.Post{
		Title:    "Create Me Post",
		Slug:     slug,
		AuthorID: author.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.IsPublished {
		t.Error("expected new post to be a draft")
	}
	if created.PublishedAt != nil {
		t.Error("expected nil published_at for draft")
	}
	if created.ViewCount != 0 {
		t.Errorf("view count: got %d, want 0", created.ViewCount)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected post, got nil")
	}
	if found.Title != "Create Me Post" {
		t.Errorf("title: got %q, want %q", found.Title, "Create Me Post")
	}
}

func TestPostStoreFindBySlugOnlyPublished(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	slug := "test-post-slugvisibility"
	username := "test-post-slug-author"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Hidden Draft", Slug: slug, AuthorID: author.ID})

	// Draft is invisible on the public lookup.
	found, err := s.FindBySlug(slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found != nil {
		t.Error("draft should not be visible by slug")
	}

	if err := s.Publish(post.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	found, err = s.FindBySlug(slug)
	if err != nil {
		t.Fatalf("FindBySlug after publish: %v", err)
	}
	if found == nil {
		t.Fatal("published post should be visible by slug")
	}
}

func TestPostStorePublishTimestampPreserved(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	slug := "test-post-pubstamp"
	username := "test-post-pubstamp-author"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Stamp Me", Slug: slug, AuthorID: author.ID})

	if err := s.Publish(post.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	first, _ := s.FindByID(post.ID)
	if first.PublishedAt == nil {
		t.Fatal("expected published_at set after publish")
	}
	original := *first.PublishedAt

	// Unpublish keeps the timestamp as "last published at".
	if err := s.Unpublish(post.ID); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	unpublished, _ := s.FindByID(post.ID)
	if unpublished.IsPublished {
		t.Error("expected draft after unpublish")
	}
	if unpublished.PublishedAt == nil || !unpublished.PublishedAt.Equal(original) {
		t.Error("expected published_at preserved through unpublish")
	}

	// Republish keeps the original timestamp.
	if err := s.Publish(post.ID); err != nil {
		t.Fatalf("re-Publish: %v", err)
	}
	republished, _ := s.FindByID(post.ID)
	if republished.PublishedAt == nil || !republished.PublishedAt.Equal(original) {
		t.Error("expected original published_at after republish")
	}
}

func TestPostStorePublishRecomputesAuthorCount(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	authors := NewAuthorStore(db)

	slug := "test-post-authorcount"
	username := "test-post-count-author"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Count Me", Slug: slug, AuthorID: author.ID})

	if err := s.Publish(post.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	a, _ := authors.FindByID(author.ID)
	if a.PostCount != 1 {
		t.Errorf("post count after publish: got %d, want 1", a.PostCount)
	}

	if err := s.Unpublish(post.ID); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	a, _ = authors.FindByID(author.ID)
	if a.PostCount != 0 {
		t.Errorf("post count after unpublish: got %d, want 0", a.PostCount)
	}
}

func TestPostStoreSetTags(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	tags := NewTagStore(db)

	postSlug := "test-post-settags"
	tagA := "test-post-settags-a"
	tagB := "test-post-settags-b"
	username := "test-post-settags-author"
	t.Cleanup(func() {
		cleanPosts(t, db, postSlug)
		cleanTags(t, db, tagA, tagB)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Tag Me", Slug: postSlug, AuthorID: author.ID})
	a, _ := tags.Create(&models.Tag{Name: "Set A", Slug: tagA, IsActive: true})
	b, _ := tags.Create(&models.Tag{Name: "Set B", Slug: tagB, IsActive: true})

	// Attach A.
	if err := s.SetTags(post.ID, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("SetTags attach: %v", err)
	}
	a, _ = tags.FindByID(a.ID)
	if a.UsageCount != 1 {
		t.Errorf("tag A usage after attach: got %d, want 1", a.UsageCount)
	}

	// Re-applying the same set must not double count.
	if err := s.SetTags(post.ID, []uuid.UUID{a.ID}); err != nil {
		t.Fatalf("SetTags idempotent: %v", err)
	}
	a, _ = tags.FindByID(a.ID)
	if a.UsageCount != 1 {
		t.Errorf("tag A usage after re-apply: got %d, want 1", a.UsageCount)
	}

	// Swap A for B: A decrements, B increments.
	if err := s.SetTags(post.ID, []uuid.UUID{b.ID}); err != nil {
		t.Fatalf("SetTags swap: %v", err)
	}
	a, _ = tags.FindByID(a.ID)
	b, _ = tags.FindByID(b.ID)
	if a.UsageCount != 0 {
		t.Errorf("tag A usage after swap: got %d, want 0", a.UsageCount)
	}
	if b.UsageCount != 1 {
		t.Errorf("tag B usage after swap: got %d, want 1", b.UsageCount)
	}

	// Tags are attached on read.
	loaded, _ := s.FindByID(post.ID)
	if len(loaded.Tags) != 1 || loaded.Tags[0].Slug != tagB {
		t.Errorf("expected tag %q attached, got %+v", tagB, loaded.Tags)
	}

	// Clear the set.
	if err := s.SetTags(post.ID, nil); err != nil {
		t.Fatalf("SetTags clear: %v", err)
	}
	b, _ = tags.FindByID(b.ID)
	if b.UsageCount != 0 {
		t.Errorf("tag B usage after clear: got %d, want 0", b.UsageCount)
	}
}

func TestPostStoreSetTagsDuplicateIDs(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	tags := NewTagStore(db)

	postSlug := "test-post-duptags"
	tagSlug := "test-post-duptags-tag"
	username := "test-post-duptags-author"
	t.Cleanup(func() {
		cleanPosts(t, db, postSlug)
		cleanTags(t, db, tagSlug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Dup Tag Me", Slug: postSlug, AuthorID: author.ID})
	tag, _ := tags.Create(&models.Tag{Name: "Dup Tag", Slug: tagSlug, IsActive: true})

	// The same ID twice in one request is a single attachment.
	if err := s.SetTags(post.ID, []uuid.UUID{tag.ID, tag.ID}); err != nil {
		t.Fatalf("SetTags with duplicate IDs: %v", err)
	}

	tag, _ = tags.FindByID(tag.ID)
	if tag.UsageCount != 1 {
		t.Errorf("tag usage after duplicate attach: got %d, want 1", tag.UsageCount)
	}

	var joinRows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM post_tags WHERE post_id = $1`, post.ID).Scan(&joinRows); err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if joinRows != 1 {
		t.Errorf("join rows after duplicate attach: got %d, want 1", joinRows)
	}
}

func TestPostStoreDetachClampsStaleCounter(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	tags := NewTagStore(db)

	postSlug := "test-post-clampstale"
	tagSlug := "test-post-clampstale-tag"
	username := "test-post-clamp-author"
	t.Cleanup(func() {
		cleanPosts(t, db, postSlug)
		cleanTags(t, db, tagSlug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Clamp Me", Slug: postSlug, AuthorID: author.ID})
	tag, _ := tags.Create(&models.Tag{Name: "Clamp Tag", Slug: tagSlug, IsActive: true})
	if err := s.SetTags(post.ID, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("SetTags attach: %v", err)
	}

	// Simulate a counter that drifted to zero while the tag stayed
	// attached. The detach must leave it at zero, never negative.
	if _, err := db.Exec(`UPDATE tags SET usage_count = 0 WHERE id = $1`, tag.ID); err != nil {
		t.Fatalf("force stale counter: %v", err)
	}

	if err := s.SetTags(post.ID, nil); err != nil {
		t.Fatalf("SetTags detach: %v", err)
	}
	tag, _ = tags.FindByID(tag.ID)
	if tag.UsageCount != 0 {
		t.Errorf("tag usage after stale detach: got %d, want 0", tag.UsageCount)
	}
}

func TestPostStoreDeleteReleasesTags(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)
	tags := NewTagStore(db)
	authors := NewAuthorStore(db)

	postSlug := "test-post-delrelease"
	tagSlug := "test-post-delrelease-tag"
	username := "test-post-del-author"
	t.Cleanup(func() {
		cleanPosts(t, db, postSlug)
		cleanTags(t, db, tagSlug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "Delete Me", Slug: postSlug, AuthorID: author.ID, IsPublished: true})
	tag, _ := tags.Create(&models.Tag{Name: "Release Tag", Slug: tagSlug, IsActive: true})
	s.SetTags(post.ID, []uuid.UUID{tag.ID})

	if err := s.Delete(post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, _ := s.FindByID(post.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}

	tag, _ = tags.FindByID(tag.ID)
	if tag.UsageCount != 0 {
		t.Errorf("tag usage after post delete: got %d, want 0", tag.UsageCount)
	}

	a, _ := authors.FindByID(author.ID)
	if a.PostCount != 0 {
		t.Errorf("author post count after delete: got %d, want 0", a.PostCount)
	}
}

func TestPostStoreIncrementViewCount(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	slug := "test-post-views"
	username := "test-post-views-author"
	t.Cleanup(func() {
		cleanPosts(t, db, slug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	post, _ := s.Create(&models.Post{Title: "View Me", Slug: slug, AuthorID: author.ID, IsPublished: true})

	for i := 0; i < 3; i++ {
		if err := s.IncrementViewCount(post.ID); err != nil {
			t.Fatalf("IncrementViewCount: %v", err)
		}
	}

	found, _ := s.FindByID(post.ID)
	if found.ViewCount != 3 {
		t.Errorf("view count: got %d, want 3", found.ViewCount)
	}
}

func TestPostStoreListPublished(t *testing.T) {
	db := testDB(t)
	s := NewPostStore(db)

	pubSlug := "test-post-listpub-on"
	draftSlug := "test-post-listpub-off"
	username := "test-post-listpub-author"
	t.Cleanup(func() {
		cleanPosts(t, db, pubSlug, draftSlug)
		cleanAuthors(t, db, username)
	})

	author := createTestAuthor(t, db, username, false)
	s.Create(&models.Post{Title: "Published", Slug: pubSlug, AuthorID: author.ID, IsPublished: true})
	s.Create(&models.Post{Title: "Draft", Slug: draftSlug, AuthorID: author.ID})

	posts, err := s.ListPublished()
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}

	var sawPub, sawDraft bool
	for _, p := range posts {
		if p.Slug == pubSlug {
			sawPub = true
		}
		if p.Slug == draftSlug {
			sawDraft = true
		}
	}
	if !sawPub {
		t.Error("published post missing from ListPublished")
	}
	if sawDraft {
		t.Error("draft must not appear in ListPublished")
	}
}
