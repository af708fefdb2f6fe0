package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for post, category, tag, and author fields.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxMarkdownLen    = 100_000
	maxExcerptLen     = 1_000
	maxMetaDescLen    = 160
	maxNameLen        = 100
	maxDescriptionLen = 1_000
	maxUsernameLen    = 50
	maxDisplayNameLen = 100
	maxBioLen         = 2_000
)

// validatePost checks post inputs and returns the first error found.
func validatePost(title, slug, markdown string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(markdown) > maxMarkdownLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validatePostMetadata checks optional SEO metadata fields.
func validatePostMetadata(excerpt, metaDesc string) string {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	if utf8.RuneCountInString(metaDesc) > maxMetaDescLen {
		return "Meta description is too long (max 160 characters)."
	}
	return ""
}

// validateTaxonomyItem checks shared category and tag inputs.
func validateTaxonomyItem(name, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 1,000 characters)."
	}
	return ""
}

// validateAuthor checks author account inputs.
func validateAuthor(username, displayName, bio string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 50 characters)."
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(bio) > maxBioLen {
		return "Bio is too long (max 2,000 characters)."
	}
	return ""
}
