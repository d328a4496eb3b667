package utils

import "strings"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Offset converts a 1-based page into a row offset.
func Offset(page, limit int) int {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 0 {
		limit = 0
	}
	return (page - 1) * limit
}

// ValidPage reports whether page/limit fall inside the accepted window.
func ValidPage(page, limit int) bool {
	return page >= 1 && limit >= 1 && limit <= MaxLimit
}

// PageSlice returns the page window of items. Out of range pages yield an
// empty, non-nil slice.
func PageSlice[T any](items []T, page, limit int) []T {
	off := Offset(page, limit)
	if off >= len(items) || limit <= 0 {
		return []T{}
	}
	end := off + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-off)
	copy(out, items[off:end])
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a substring LIKE pattern (ESCAPE '\') with wildcards in
// the input escaped. An empty substring matches everything.
func LikePattern(substring string) string {
	return "%" + likeEscaper.Replace(substring) + "%"
}
