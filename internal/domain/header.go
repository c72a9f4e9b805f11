package domain

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

const (
	// TemperaturePlaceholder is shown when no reading is available.
	TemperaturePlaceholder = "--°F"

	// LocationPlaceholder replaces the location label when the weather lookup fails.
	LocationPlaceholder = "--"

	// DefaultSearchURL is the search engine query endpoint.
	DefaultSearchURL = "https://www.google.com/search"
)

// FormatClock renders a 12-hour clock with a lowercase suffix and no
// leading zero on the hour. Example: 9:05am, 12:30pm
func FormatClock(t time.Time) string {
	return t.Format("3:04pm")
}

// FormatDate renders "Weekday, Mon D". Example: Monday, Jan 2
func FormatDate(t time.Time) string {
	return t.Format("Monday, Jan 2")
}

// CelsiusToFahrenheit converts and rounds halves up (-2.5 -> -2, 2.5 -> 3).
func CelsiusToFahrenheit(c float64) int {
	return int(math.Floor(c*9/5 + 32 + 0.5))
}

// FormatTemperature renders a Celsius reading as whole Fahrenheit degrees.
func FormatTemperature(c float64) string {
	return fmt.Sprintf("%d°F", CelsiusToFahrenheit(c))
}

// SearchURL builds the search delegation URL for a query.
// Returns false when the trimmed query is empty.
func SearchURL(base, query string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	if base == "" {
		base = DefaultSearchURL
	}
	return base + "?" + url.Values{"q": {query}}.Encode(), true
}
