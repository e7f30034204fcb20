package listing

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"
)

// ErrUnknownSortKey is returned when a view is asked for a sort it does not support.
var ErrUnknownSortKey = errors.New("unknown sort key")

// ErrUnknownFilter is returned when a view is asked for a filter value it does not support.
var ErrUnknownFilter = errors.New("unknown filter")

// View is the mutable state of one list page. Each field changes
// independently; Apply recombines them the same way every time.
type View struct {
	Query  string `json:"query"`
	Sort   string `json:"sort"`
	Filter string `json:"filter"`
	Page   int    `json:"page"`
}

// FilterAll matches every item.
const FilterAll = "all"

// Apply returns the items whose search fields contain query
// (case-insensitive, whitespace significant) and that satisfy pred, stably
// sorted by cmp.
//
// items is never modified. A nil fields func disables search, a nil pred
// accepts everything and a nil cmp keeps source order.
func Apply[T any](items []T, query string, fields func(T) []string, pred func(T) bool, cmp func(a, b T) int) []T {
	needle := strings.ToLower(query)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !matches(it, needle, fields) {
			continue
		}
		if pred != nil && !pred(it) {
			continue
		}
		out = append(out, it)
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func matches[T any](it T, needle string, fields func(T) []string) bool {
	if needle == "" || fields == nil {
		return true
	}
	for _, f := range fields(it) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ByTimeDesc orders newest first.
func ByTimeDesc[T any](key func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return key(b).Compare(key(a))
	}
}

// ByTimeAsc orders oldest first.
func ByTimeAsc[T any](key func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return key(a).Compare(key(b))
	}
}

// ByName orders by name, ignoring case.
func ByName[T any](key func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// ByString orders by an exact string key, such as a category.
func ByString[T any](key func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// ByIntDesc orders by a numeric key, largest first.
func ByIntDesc[T any](key func(T) int64) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	}
}

// Counts tallies items per key, plus FilterAll for the total.
func Counts[T any](items []T, key func(T) string) map[string]int {
	counts := map[string]int{FilterAll: len(items)}
	for _, it := range items {
		counts[key(it)]++
	}
	return counts
}
