package domain

// Shortcut represents a single tile on the new tab page.
//
// It is NOT tied to any storage backend. The JSON field names are the
// persisted format and must stay stable across releases.
type Shortcut struct {
	// ─────────────────────────────
	// Identity & display
	// ─────────────────────────────

	// Name is the display label. Never empty after validation.
	Name string `json:"name"`

	// URL is the normalized absolute http(s) URL.
	// Example: https://www.youtube.com/
	URL string `json:"url"`

	// Icon is the favicon lookup URL derived from the URL's domain.
	// It is re-derived whenever URL changes and never edited on its own.
	Icon string `json:"icon"`

	// ─────────────────────────────
	// Grouping
	// ─────────────────────────────

	// Category is an optional free-text label.
	// Empty means uncategorized.
	Category string `json:"category,omitempty"`

	// ─────────────────────────────
	// Usage
	// ─────────────────────────────

	// Clicks counts activations. It only grows, except when the
	// record is deleted.
	Clicks int64 `json:"clicks"`
}

// HasCategory reports whether the shortcut carries a non-empty category.
func (s Shortcut) HasCategory() bool {
	return s.Category != ""
}

// DefaultSeed returns the built-in shortcut set used when storage holds
// nothing usable. A fresh slice is returned on every call.
func DefaultSeed() []Shortcut {
	return []Shortcut{
		{
			Name: "Amazon",
			URL:  "https://www.amazon.com/",
			Icon: DeriveIcon("amazon.com"),
		},
		{
			Name: "Co-Pilot",
			URL:  "https://copilot.microsoft.com/chats/G2Ujy9vDzVNegQ4U5ZnSm",
			Icon: DeriveIcon("copilot.microsoft.com"),
		},
		{
			Name: "YouTube",
			URL:  "https://www.youtube.com/",
			Icon: DeriveIcon("youtube.com"),
		},
	}
}
