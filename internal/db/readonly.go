package db

import (
	"regexp"
	"strings"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`--[^\n]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// readOnlyPrefixes are the only statement shapes allowed through the gate.
// Each requires a trailing space so a bare keyword never matches.
var readOnlyPrefixes = []string{
	"select ",
	"show ",
	"describe ",
	"desc ",
	"explain ",
}

// NormalizeQuery strips SQL comments, collapses whitespace runs to a single
// space, trims, and lower-cases. The classifier and nothing else depends on
// this form.
func NormalizeQuery(query string) string {
	cleaned := blockCommentRe.ReplaceAllString(query, "")
	cleaned = lineCommentRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// IsReadOnly reports whether a statement is safe to execute. It is a
// deliberately conservative prefix match, not a parser: anything that does
// not normalize to an allow-listed shape is rejected, including the empty
// string. This is the sole safety gate in front of the database.
func IsReadOnly(query string) bool {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return false
	}

	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}

	// A WITH/CTE clause is allowed only when a SELECT follows somewhere in it.
	if strings.HasPrefix(normalized, "with ") && strings.Contains(normalized, "select ") {
		return true
	}

	return false
}
