package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// StrictPolicy removes all HTML tags and attributes.
	StrictPolicy = bluemonday.StrictPolicy()

	// UGCPolicy allows safe user-generated formatting (<p>, <b>, <a>, lists).
	UGCPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns trimmed plain text. Entities escaped by
// the policy are decoded again since the result is served as JSON, so
// "Salsa & Bachata" survives unchanged.
// Use for: event titles and locations, user names.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(StrictPolicy.Sanitize(input)))
}

// HTML sanitizes HTML content, allowing safe formatting tags.
// Use for: event descriptions.
func HTML(input string) string {
	return strings.TrimSpace(UGCPolicy.Sanitize(input))
}

// OptionalHTML applies HTML to a possibly absent field. A value that is
// empty after sanitizing becomes nil.
func OptionalHTML(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := HTML(*input)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// OptionalText is the plain-text counterpart of OptionalHTML.
func OptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	cleaned := Text(*input)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
