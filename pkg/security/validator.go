package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength is the maximum number of characters in a user search
	MaxSearchQueryLength = 100
)

var (
	// ErrQueryTooLong is returned when a search exceeds MaxSearchQueryLength
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalid is returned when a search contains rejected input
	ErrQueryInvalid = errors.New("search query contains invalid characters")
)

// dangerousPatterns reject SQL and script fragments. Keywords only match as whole
// words so that names such as "Walter" or "Updike" stay searchable.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|create|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)\b(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|pg_sleep)\b`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims a user search and rejects anything that is not a plain
// name or email fragment.
func ValidateSearchQuery(query string) (string, error) {
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	query = strings.TrimSpace(query)

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalid
		}
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalid
		}
	}

	return query, nil
}

// isValidSearchChar allows letters, digits, spaces and the punctuation found in
// names and email addresses.
func isValidSearchChar(char rune) bool {
	return unicode.IsLetter(char) || unicode.IsNumber(char) ||
		char == ' ' || char == '-' || char == '_' || char == '.' ||
		char == '@' || char == '+' || char == '\''
}

// SanitizeSearchString escapes LIKE wildcards. Callers must pair it with ESCAPE '\'.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	query = strings.ReplaceAll(query, "_", `\_`)

	return query
}
