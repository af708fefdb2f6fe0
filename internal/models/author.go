// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Author represents a blog author with authentication, profile, and 2FA fields.
// The primary author is the blog owner (admin); additional authors are guest
// writers with restricted permissions.
type Author struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"` // Never serialize the hash
	DisplayName   string     `json:"display_name"`
	Bio           *string    `json:"bio,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	WebsiteURL    *string    `json:"website_url,omitempty"`
	GithubHandle  *string    `json:"github_handle,omitempty"`
	TwitterHandle *string    `json:"twitter_handle,omitempty"`
	Location      *string    `json:"location,omitempty"`
	JobTitle      *string    `json:"job_title,omitempty"`
	Company       *string    `json:"company,omitempty"`
	IsActive      bool       `json:"is_active"`
	IsAdmin       bool       `json:"is_admin"`
	IsAuthor      bool       `json:"is_author"`
	PostCount     int        `json:"post_count"` // Published posts only, recomputed on publish-state changes
	TOTPSecret    *string    `json:"-"`          // Nullable; set during 2FA setup
	TOTPEnabled   bool       `json:"totp_enabled"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Needs2FASetup returns true if the author has not completed 2FA enrollment.
// All authors must set up 2FA on their first login.
func (a *Author) Needs2FASetup() bool {
	return !a.TOTPEnabled
}

// Byline returns the author's display line for article headers, e.g.
// "Jane Doe, Staff Engineer at Acme".
func (a *Author) Byline() string {
	line := a.DisplayName
	switch {
	case a.JobTitle != nil && a.Company != nil:
		line += ", " + *a.JobTitle + " at " + *a.Company
	case a.JobTitle != nil:
		line += ", " + *a.JobTitle
	case a.Company != nil:
		line += ", at " + *a.Company
	}
	return line
}
