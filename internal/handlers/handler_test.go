// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"inkpress/internal/cache"
	"inkpress/internal/database"
	"inkpress/internal/middleware"
	"inkpress/internal/models"
	"inkpress/internal/session"
	"inkpress/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "api:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB         *sql.DB
	Valkey     *redis.Client
	Sessions   *session.Store
	Posts      *store.PostStore
	Categories *store.CategoryStore
	Tags       *store.TagStore
	Authors    *store.AuthorStore
	APICache   *cache.APICache
	Admin      *Admin
	Auth       *Auth
	Public     *Public
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	posts := store.NewPostStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	authors := store.NewAuthorStore(db)
	apiCache := cache.NewAPICache(vk, 1*time.Minute)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Sessions:   sessions,
		Posts:      posts,
		Categories: categories,
		Tags:       tags,
		Authors:    authors,
		APICache:   apiCache,
		Admin:      NewAdmin(posts, categories, tags, authors, apiCache),
		Auth:       NewAuth(sessions, authors),
		Public:     NewPublic(posts, categories, tags, authors, apiCache),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(a *models.Author, twoFADone bool) *session.Data {
	return &session.Data{
		AuthorID:    a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		IsAdmin:     a.IsAdmin,
		TwoFADone:   twoFADone,
	}
}

// withSession attaches session data to a request.
func withSession(r *http.Request, sess *session.Data) *http.Request {
	return r.WithContext(ctxWithSession(r.Context(), sess))
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// createHandlerAuthor inserts a test author and schedules cleanup.
func createHandlerAuthor(t *testing.T, env *testEnv, username string, isAdmin bool) *models.Author {
	t.Helper()
	cleanAuthorBy(t, env.DB, username)
	created, err := env.Authors.Create(&models.Author{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: "Test " + username,
		IsActive:    true,
		IsAdmin:     isAdmin,
		IsAuthor:    true,
	}, "s3cret-pass")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	t.Cleanup(func() { cleanAuthorBy(t, env.DB, username) })
	return created
}

// cleanAuthorBy removes a test author and their posts by username.
func cleanAuthorBy(t *testing.T, db *sql.DB, username string) {
	t.Helper()
	db.Exec("DELETE FROM posts WHERE author_id IN (SELECT id FROM authors WHERE username = $1)", username)
	db.Exec("DELETE FROM authors WHERE username = $1", username)
}

// cleanPostsBy removes test posts by slug.
func cleanPostsBy(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM posts WHERE slug = $1", s)
	}
}

// cleanCategoriesBy removes test categories by slug.
func cleanCategoriesBy(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanTagsBy removes test tags by slug.
func cleanTagsBy(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM tags WHERE slug = $1", s)
	}
}
