package store

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// decode parses the persisted JSON array leniently.
//
//   - ok is false when data is not a JSON array at all (null counts as malformed)
//   - elements that are not objects, or lack a string name or url, are dropped
//   - clicks that is missing, not a number or negative becomes 0; fractions are truncated
//   - a missing icon is derived from the url's domain
//   - unknown fields are ignored
//
// repaired reports whether the result differs from what was stored.
func decode(data []byte, faviconService string) (shortcuts []domain.Shortcut, repaired bool, ok bool) {
	if len(data) == 0 {
		return nil, false, false
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, false, false
	}

	shortcuts = make([]domain.Shortcut, 0, len(raw))
	for _, elem := range raw {
		rec, fixed, keep := decodeRecord(elem, faviconService)
		if !keep {
			repaired = true
			continue
		}
		if fixed {
			repaired = true
		}
		shortcuts = append(shortcuts, rec)
	}
	return shortcuts, repaired, true
}

func decodeRecord(elem json.RawMessage, faviconService string) (rec domain.Shortcut, fixed bool, keep bool) {
	var fields map[string]any
	if err := json.Unmarshal(elem, &fields); err != nil || fields == nil {
		return rec, false, false
	}

	name, _ := fields["name"].(string)
	url, _ := fields["url"].(string)
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return rec, false, false
	}

	rec.Name = name
	rec.URL = url
	rec.Category, _ = fields["category"].(string)

	icon, _ := fields["icon"].(string)
	if icon == "" {
		icon = domain.FaviconURL(faviconService, domain.DomainOf(url))
		fixed = true
	}
	rec.Icon = icon

	clicks, exact := normalizeClicks(fields["clicks"])
	rec.Clicks = clicks
	if !exact {
		fixed = true
	}

	return rec, fixed, true
}

// normalizeClicks turns a decoded JSON value into a click count.
// exact is false when the stored value had to be changed.
func normalizeClicks(v any) (clicks int64, exact bool) {
	f, isNumber := v.(float64)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, false
	}
	t := math.Trunc(f)
	return int64(t), t == f
}
