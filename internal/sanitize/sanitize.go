// Package sanitize guards the free-text fields users fill in.
//
// Item names and descriptions, request descriptions and comments are plain
// text and are stored exactly as typed, apart from surrounding whitespace.
// Text that bluemonday's strict policy would change beyond escaping contains
// markup and is rejected, so nothing is ever rewritten behind the user's back.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sakif/shareit/internal/apperror"
)

// A Policy is safe for concurrent use once configured.
var strict = bluemonday.StrictPolicy()

// The HTML tokenizer folds CRLF and CR to LF in text.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Text trims s and returns it unchanged otherwise. Input containing markup
// is a validation error on field.
func Text(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if ContainsMarkup(s) {
		return "", apperror.ValidationFailed(field, field+" must not contain markup")
	}
	return s, nil
}

// ContainsMarkup reports whether the strict policy would drop any part of s.
// Escaped entities such as "&lt;b&gt;" are text, not markup.
func ContainsMarkup(s string) bool {
	if !strings.ContainsAny(s, "<>&") {
		return false
	}
	s = newlines.Replace(s)
	return html.UnescapeString(strict.Sanitize(s)) != html.UnescapeString(s)
}
