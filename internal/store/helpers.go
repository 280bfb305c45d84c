// ABOUTME: LIKE pattern helpers for record search and log path filters.
// ABOUTME: User input is escaped so %, _ and \ match literally.

package store

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeSQLLike escapes LIKE wildcards. Queries using it must declare
// ESCAPE '\'.
func escapeSQLLike(s string) string {
	return likeEscaper.Replace(s)
}

// containsPattern matches s anywhere in a value.
func containsPattern(s string) string {
	return "%" + escapeSQLLike(s) + "%"
}

// prefixPattern matches values starting with s.
func prefixPattern(s string) string {
	return escapeSQLLike(s) + "%"
}
