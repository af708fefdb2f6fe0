// Package store provides database access methods for all inkpress
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkpress/internal/models"
)

// AuthorStore handles all author-related database operations.
type AuthorStore struct {
	db *sql.DB
}

// NewAuthorStore creates a new AuthorStore with the given database connection.
func NewAuthorStore(db *sql.DB) *AuthorStore {
	return &AuthorStore{db: db}
}

const authorColumns = `id, username, email, password_hash, display_name, bio,
	avatar_url, website_url, github_handle, twitter_handle, location,
	job_title, company, is_active, is_admin, is_author, post_count,
	totp_secret, totp_enabled, last_login_at, created_at, updated_at`

// scanAuthor scans a row into an Author struct.
func scanAuthor(scanner interface{ Scan(...any) error }) (*models.Author, error) {
	var a models.Author
	err := scanner.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Bio,
		&a.AvatarURL, &a.WebsiteURL, &a.GithubHandle, &a.TwitterHandle, &a.Location,
		&a.JobTitle, &a.Company, &a.IsActive, &a.IsAdmin, &a.IsAuthor, &a.PostCount,
		&a.TOTPSecret, &a.TOTPEnabled, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByUsername retrieves an author by username. Returns nil if not found.
func (s *AuthorStore) FindByUsername(username string) (*models.Author, error) {
	row := s.db.QueryRow(`SELECT `+authorColumns+` FROM authors WHERE username = $1`, username)
	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find author by username: %w", err)
	}
	return a, nil
}

// FindByEmail retrieves an author by email address. Returns nil if not found.
func (s *AuthorStore) FindByEmail(email string) (*models.Author, error) {
	row := s.db.QueryRow(`SELECT `+authorColumns+` FROM authors WHERE email = $1`, email)
	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find author by email: %w", err)
	}
	return a, nil
}

// FindByID retrieves an author by UUID. Returns nil if not found.
func (s *AuthorStore) FindByID(id uuid.UUID) (*models.Author, error) {
	row := s.db.QueryRow(`SELECT `+authorColumns+` FROM authors WHERE id = $1`, id)
	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find author by id: %w", err)
	}
	return a, nil
}

// List returns all authors ordered by creation date.
func (s *AuthorStore) List() ([]models.Author, error) {
	rows, err := s.db.Query(`SELECT ` + authorColumns + ` FROM authors ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, *a)
	}
	return authors, rows.Err()
}

// Create inserts a new author with a bcrypt-hashed password.
func (s *AuthorStore) Create(a *models.Author, password string) (*models.Author, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO authors (username, email, password_hash, display_name, bio,
		                     avatar_url, website_url, github_handle, twitter_handle,
		                     location, job_title, company, is_active, is_admin, is_author)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+authorColumns,
		a.Username, a.Email, string(hash), a.DisplayName, a.Bio,
		a.AvatarURL, a.WebsiteURL, a.GithubHandle, a.TwitterHandle,
		a.Location, a.JobTitle, a.Company, a.IsActive, a.IsAdmin, a.IsAuthor,
	)
	result, err := scanAuthor(row)
	if err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return result, nil
}

// Update modifies an author's profile fields. Password and 2FA state are
// managed through their dedicated methods.
func (s *AuthorStore) Update(a *models.Author) error {
	_, err := s.db.Exec(`
		UPDATE authors SET
			username = $1, email = $2, display_name = $3, bio = $4,
			avatar_url = $5, website_url = $6, github_handle = $7,
			twitter_handle = $8, location = $9, job_title = $10, company = $11,
			is_active = $12, is_admin = $13, is_author = $14, updated_at = NOW()
		WHERE id = $15
	`, a.Username, a.Email, a.DisplayName, a.Bio,
		a.AvatarURL, a.WebsiteURL, a.GithubHandle,
		a.TwitterHandle, a.Location, a.JobTitle, a.Company,
		a.IsActive, a.IsAdmin, a.IsAuthor, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}

// SetPassword replaces the author's password with a new bcrypt hash.
func (s *AuthorStore) SetPassword(authorID uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE authors SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), authorID)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for an author (during 2FA setup).
func (s *AuthorStore) SetTOTPSecret(authorID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE authors SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, authorID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for an author (after successful code verification).
func (s *AuthorStore) EnableTOTP(authorID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE authors SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, authorID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP clears the TOTP secret and disables 2FA for an author.
// The author will be forced to set up 2FA again on their next login.
func (s *AuthorStore) ResetTOTP(authorID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE authors SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, authorID)
	if err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}

// TouchLastLogin stamps the author's last successful login time.
func (s *AuthorStore) TouchLastLogin(authorID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE authors SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1
	`, authorID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// RecomputePostCount refreshes the author's denormalized published post count.
// Drafts are not counted.
func (s *AuthorStore) RecomputePostCount(authorID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE authors SET post_count = (
			SELECT COUNT(*) FROM posts WHERE author_id = $1 AND is_published
		), updated_at = NOW()
		WHERE id = $1
	`, authorID)
	if err != nil {
		return fmt.Errorf("recompute post count: %w", err)
	}
	return nil
}

// Delete removes an author by ID.
func (s *AuthorStore) Delete(authorID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM authors WHERE id = $1`, authorID)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return nil
}

// CheckPassword verifies a plaintext password against the author's stored hash.
func (s *AuthorStore) CheckPassword(author *models.Author, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(author.PasswordHash), []byte(password)) == nil
}
