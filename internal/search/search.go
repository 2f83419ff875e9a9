// Package search builds the case-insensitive substring predicates used by
// the library's free-text search.
package search

import (
	"fmt"
	"strings"
)

// MaxQueryLength is the longest search text accepted, in characters.
const MaxQueryLength = 200

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns an ILIKE pattern matching any value that contains
// query literally. LIKE metacharacters in query are escaped with the default
// backslash escape.
func ContainsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// BuildContainsClause returns a parenthesised predicate that matches when
// any of columns contains query case-insensitively, e.g.
//
//	(e.title ILIKE $3 OR e.slug ILIKE $3)
//
// All columns share one placeholder, $paramIdx, bound to the single returned
// argument. Column expressions are trusted SQL and must never come from
// user input. An empty column list or blank query yields no clause.
func BuildContainsClause(query string, columns []string, paramIdx int) (clause string, args []any) {
	if len(columns) == 0 || strings.TrimSpace(query) == "" {
		return "", nil
	}

	placeholder := fmt.Sprintf("$%d", paramIdx)
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " ILIKE " + placeholder
	}

	return "(" + strings.Join(parts, " OR ") + ")", []any{ContainsPattern(query)}
}
