package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// deniedKeywords is scanned in list order; the first match is the one
// reported. EXEC and EXECUTE are listed separately because both appear in
// dialects the upstream data tooling accepts.
var deniedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
	"PROCEDURE", "FUNCTION",
}

// One whole-word pattern per keyword. \b treats [A-Za-z0-9_] as word
// characters, so identifiers such as updated_at or procedures never match.
var deniedPatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(deniedKeywords))
	for i, kw := range deniedKeywords {
		patterns[i] = regexp.MustCompile(`\b` + kw + `\b`)
	}
	return patterns
}()

// ValidationError explains why a query was refused before it reached the
// database. Keyword is set only for denylist rejections.
type ValidationError struct {
	Reason  string
	Keyword string
}

func (e *ValidationError) Error() string { return e.Reason }

// LexicalValidator screens raw SQL without parsing it: no denylisted keyword
// may appear anywhere as a whole word, the first token must be SELECT, and
// the text must hold a single statement. The scan covers string literals and
// comments too, so a query mentioning 'UPDATE' inside a literal is rejected;
// over-blocking is acceptable here, under-blocking is not.
type LexicalValidator struct{}

func NewLexicalValidator() *LexicalValidator {
	return &LexicalValidator{}
}

// Validate returns nil for an accepted query and a *ValidationError
// otherwise. Pure function of the input string.
func (v *LexicalValidator) Validate(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &ValidationError{Reason: "empty query: only SELECT queries are allowed"}
	}

	upper := strings.ToUpper(trimmed)

	// Denylist before the shape check: "DROP TABLE x" is reported by its
	// offending keyword, not as a generic non-SELECT.
	for i, pattern := range deniedPatterns {
		if pattern.MatchString(upper) {
			kw := deniedKeywords[i]
			return &ValidationError{
				Reason:  fmt.Sprintf("keyword %s is not allowed: only read-only SELECT queries are permitted", kw),
				Keyword: kw,
			}
		}
	}

	if firstWord(upper) != "SELECT" {
		return &ValidationError{Reason: "only SELECT queries are allowed: the query must start with SELECT"}
	}

	// A trailing semicolon (plus whitespace) is fine; anything after one is a
	// second statement.
	if strings.Contains(strings.TrimRight(upper, "; \t\r\n"), ";") {
		return &ValidationError{Reason: "multiple statements are not allowed: submit a single SELECT"}
	}

	return nil
}

// firstWord returns the leading run of word characters of s.
func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return s[:i]
		}
	}
	return s
}
