package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin author, a small starter category tree, and a handful of tags.
// It is a no-op if any author already exists. The admin will be prompted
// to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM authors").Scan(&count); err != nil {
		return fmt.Errorf("seed check authors: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO authors (username, email, password_hash, display_name, is_admin, totp_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, "admin", "admin@inkpress.local", string(hash), "Admin", true, false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	// Starter category tree: one root with two children.
	var techID string
	err = db.QueryRow(`
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ('Tech', 'tech', 'Technical articles', 0)
		RETURNING id
	`).Scan(&techID)
	if err != nil {
		return fmt.Errorf("seed insert root category: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO categories (name, slug, description, parent_id, sort_order)
		VALUES ('Frontend', 'frontend', 'Frontend development', $1, 0),
		       ('Backend', 'backend', 'Backend development', $1, 1)
	`, techID)
	if err != nil {
		return fmt.Errorf("seed insert child categories: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO tags (name, slug, tag_type)
		VALUES ('go', 'go', 'technology'),
		       ('react', 'react', 'technology'),
		       ('notes', 'notes', 'topic')
	`)
	if err != nil {
		return fmt.Errorf("seed insert tags: %w", err)
	}

	slog.Info("database seeded with default admin author",
		"email", "admin@inkpress.local",
		"password", "admin",
	)

	return nil
}
