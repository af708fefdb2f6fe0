// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts the Markdown mirror of a post into HTML using
// goldmark, and derives the read-time and excerpt metadata the API serves
// alongside each article.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// WordsPerMinute is the assumed reading speed for read-time estimation.
const WordsPerMinute = 200

// ExcerptLength is the maximum excerpt length in characters, sized to the
// usual SEO description budget.
const ExcerptLength = 160

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // GitHub-Flavored Markdown: tables, strikethrough, autolinks, task lists
		extension.Typographer, // Smart quotes and dashes
		highlighting.NewHighlighting( // Syntax highlighting for fenced code blocks
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // Auto-generate heading IDs for anchors
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(), // Allow raw HTML blocks embedded in articles
	),
)

// formatting matches Markdown punctuation stripped for plain-text output.
var formatting = regexp.MustCompile("[#*_`\\[\\]()>~]")

// ToHTML converts Markdown source into HTML. Raw HTML embedded in the
// Markdown is passed through unchanged (WithUnsafe).
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText strips Markdown formatting and collapses whitespace, yielding
// the text used for excerpts and word counting.
func PlainText(source string) string {
	plain := formatting.ReplaceAllString(source, "")
	return strings.Join(strings.Fields(plain), " ")
}

// ReadingTime estimates reading time in whole minutes at WordsPerMinute.
// Non-empty content always reads as at least one minute; empty content is
// zero.
func ReadingTime(source string) int {
	words := len(strings.Fields(source))
	if words == 0 {
		return 0
	}
	minutes := words / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Excerpt produces a short preview from Markdown source, truncated to
// ExcerptLength characters. Truncation backtracks to the previous word
// boundary when one falls in the last fifth of the budget, so the cut
// rarely lands mid-word.
func Excerpt(source string) string {
	plain := PlainText(source)
	if len(plain) <= ExcerptLength {
		return plain
	}

	truncated := plain[:ExcerptLength]
	if idx := strings.LastIndex(truncated, " "); idx > ExcerptLength*4/5 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
