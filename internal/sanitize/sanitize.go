// Package sanitize strips markup from user-entered calendar text. Day notes,
// unit descriptions and special-date descriptions are plain text; any HTML
// pasted into them is removed before it is sent upstream, where other
// clients may render it without escaping.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared strict policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes all HTML from input and returns plain text. Entities that
// bluemonday escapes are decoded again so "R&D" stays "R&D"; templates
// escape on output.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(input)))
}

// Line is Text for single-line fields: line breaks and runs of whitespace
// collapse to one space.
func Line(input string) string {
	return strings.Join(strings.Fields(Text(input)), " ")
}
