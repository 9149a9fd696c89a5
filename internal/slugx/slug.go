// Package slugx derives storage folder identifiers from applicant emails.
package slugx

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[\s_-]+`)
	edgeHyphens  = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts text to a lowercase, hyphen-separated slug: special
// characters are stripped, runs of spaces/underscores/hyphens collapse to a
// single hyphen, and leading/trailing hyphens are removed.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return edgeHyphens.ReplaceAllString(s, "")
}

// SlugifyEmail turns an email address into a slug by first replacing the
// '@' and dots with hyphens: anna@example.com → anna-example-com.
func SlugifyEmail(email string) string {
	replaced := strings.ReplaceAll(strings.Replace(email, "@", "-", 1), ".", "-")
	return Slugify(replaced)
}

// FolderID builds the storage folder identifier for one submission:
// the email slug joined with the submission time in Unix milliseconds.
// Uniqueness is practical, not guaranteed; a retry gets a new timestamp.
func FolderID(email string, at time.Time) string {
	return fmt.Sprintf("%s-%d", SlugifyEmail(email), at.UnixMilli())
}
