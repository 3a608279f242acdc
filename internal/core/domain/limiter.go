package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Row-count bounds for executed queries. DefaultRowLimit applies when the
// caller does not ask for a limit; no query may return more than MaxRowLimit
// rows.
const (
	DefaultRowLimit = 100
	MaxRowLimit     = 1000
)

var (
	limitClauseRe = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)
	limitAllRe    = regexp.MustCompile(`(?i)\bLIMIT\s+ALL\b`)
	limitTokenRe  = regexp.MustCompile(`(?i)\bLIMIT\b`)
)

// ClampRowLimit coerces a requested row limit into [1, MaxRowLimit].
func ClampRowLimit(requested int) int {
	if requested < 1 {
		return 1
	}
	if requested > MaxRowLimit {
		return MaxRowLimit
	}
	return requested
}

// EnforceRowLimit rewrites query so that it returns at most limit rows.
//
// Trailing whitespace and semicolons are stripped first. A numeric LIMIT
// clause is kept when its value is within limit and rewritten to limit when
// it exceeds it; LIMIT ALL is rewritten to limit; a query with no LIMIT token
// gets one appended. Applying the function twice yields the same string.
//
// The scan is lexical: a LIMIT inside a subquery or CTE is indistinguishable
// from the outermost clause, and the first numeric occurrence decides whether
// a rewrite happens. This is a known limitation of the text-level approach.
func EnforceRowLimit(query string, limit int) string {
	trimmed := strings.TrimRight(query, "; \t\r\n")

	if m := limitClauseRe.FindStringSubmatch(trimmed); m != nil {
		existing, err := strconv.Atoi(m[1])
		if err == nil && existing <= limit {
			return trimmed
		}
		return limitClauseRe.ReplaceAllString(trimmed, fmt.Sprintf("LIMIT %d", limit))
	}

	if limitAllRe.MatchString(trimmed) {
		return limitAllRe.ReplaceAllString(trimmed, fmt.Sprintf("LIMIT %d", limit))
	}

	// Bare LIMIT token without a numeric argument (placeholder, missing
	// value): left untouched for the database to reject.
	if limitTokenRe.MatchString(trimmed) {
		return trimmed
	}

	return fmt.Sprintf("%s LIMIT %d", trimmed, limit)
}
