package domain

import (
	"fmt"
	"slices"
	"strings"
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "All"

// SortMode selects the display order of a view.
type SortMode int

const (
	// AlphaSort orders by name, case-insensitive.
	AlphaSort SortMode = iota
	// FrequencySort orders by clicks descending, then by name.
	FrequencySort
)

// String returns the wire name of the sort mode.
func (m SortMode) String() string {
	switch m {
	case FrequencySort:
		return "frequency"
	default:
		return "alpha"
	}
}

// ParseSortMode parses "alpha" or "frequency" (case-insensitive).
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alpha", "name", "":
		return AlphaSort, nil
	case "frequency", "clicks", "freq":
		return FrequencySort, nil
	default:
		return AlphaSort, fmt.Errorf("unknown sort mode %q", s)
	}
}

// Toggle returns the other sort mode.
func (m SortMode) Toggle() SortMode {
	if m == FrequencySort {
		return AlphaSort
	}
	return FrequencySort
}

// Entry is one row of a view: the record plus its position in the
// stored collection, so callers can address it for mutations.
type Entry struct {
	Index    int      `json:"index"`
	Shortcut Shortcut `json:"shortcut"`
}

// View filters and orders shortcuts for display. The input is never mutated.
// An empty category or AllCategories disables filtering; otherwise only
// shortcuts whose category equals the filter are kept.
func View(shortcuts []Shortcut, mode SortMode, category string) []Entry {
	entries := make([]Entry, 0, len(shortcuts))
	filter := isFiltered(category)

	for i, s := range shortcuts {
		if filter && s.Category != category {
			continue
		}
		entries = append(entries, Entry{Index: i, Shortcut: s})
	}

	// Stable sort keeps stored order for equal keys
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if mode == FrequencySort && a.Shortcut.Clicks != b.Shortcut.Clicks {
			if a.Shortcut.Clicks > b.Shortcut.Clicks {
				return -1
			}
			return 1
		}
		return strings.Compare(foldName(a.Shortcut.Name), foldName(b.Shortcut.Name))
	})

	return entries
}

// ListCategories returns the distinct non-empty categories, ordered
// case-insensitively. Uncategorized shortcuts contribute nothing.
func ListCategories(shortcuts []Shortcut) []string {
	seen := make(map[string]bool, len(shortcuts))
	categories := make([]string, 0)

	for _, s := range shortcuts {
		if !s.HasCategory() || seen[s.Category] {
			continue
		}
		seen[s.Category] = true
		categories = append(categories, s.Category)
	}

	slices.SortFunc(categories, func(a, b string) int {
		if c := strings.Compare(foldName(a), foldName(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	return categories
}

// isFiltered reports whether a category value restricts the view
func isFiltered(category string) bool {
	return category != "" && category != AllCategories
}

func foldName(s string) string {
	return strings.ToLower(s)
}
