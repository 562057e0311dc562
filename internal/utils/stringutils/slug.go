package stringutils

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var multiSpacePattern = regexp.MustCompile(`\s+`)

// DefaultSlugMaxLen bounds the title portion of generated filenames.
const DefaultSlugMaxLen = 48

// Slugify converts a chat or project title into a filesystem-safe slug:
// lowercase, alphanumeric runs joined by single underscores.
func Slugify(title string) string {
	title = strings.TrimSpace(title)

	var result strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			result.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			result.WriteRune(' ')
		}
	}

	slug := multiSpacePattern.ReplaceAllString(strings.TrimSpace(result.String()), "_")
	if slug == "" {
		return "untitled"
	}
	if len(slug) > DefaultSlugMaxLen {
		slug = strings.TrimRight(slug[:DefaultSlugMaxLen], "_")
	}
	return slug
}

// ExportFilename builds "{slug(title)}_{timestamp}.{ext}" download names.
func ExportFilename(title string, at time.Time, ext string) string {
	return Slugify(title) + "_" + at.UTC().Format("20060102_150405") + "." + ext
}

// TruncateTitle truncates a title to a maximum length, breaking at word boundaries
func TruncateTitle(title string, maxLen int) string {
	if len(title) <= maxLen {
		return title
	}

	ellipsis := "..."
	contentLimit := maxLen - len(ellipsis)
	if contentLimit < 0 {
		contentLimit = 0
	}

	truncated := title[:contentLimit]
	minLen := contentLimit / 2

	// Prefer to cut on a word boundary when possible
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > minLen {
		truncated = strings.TrimRight(truncated[:lastSpace], " ")
	}

	return truncated + ellipsis
}
