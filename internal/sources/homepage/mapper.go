package homepage

import (
	"errors"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// ErrNothingToImport is returned when a file holds no usable entry.
var ErrNothingToImport = errors.New("no entry with an href found")

// MapServices turns services into shortcuts. The group name becomes the
// category. Entries without href are skipped; URL validation happens on
// import. Output follows file order, map keys sorted within a group.
func MapServices(cfg ServicesConfig) ([]domain.Shortcut, error) {
	var out []domain.Shortcut

	for _, groupMap := range cfg {
		for _, group := range sortedKeys(groupMap) {
			for _, serviceMap := range groupMap[group] {
				for _, name := range sortedKeys(serviceMap) {
					props := serviceMap[name]
					href := strings.TrimSpace(props.Href)
					if href == "" {
						continue
					}
					out = append(out, domain.Shortcut{
						Name:     strings.TrimSpace(name),
						URL:      href,
						Category: strings.TrimSpace(group),
					})
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrNothingToImport
	}
	return out, nil
}

// MapBookmarks turns bookmarks into shortcuts. The bookmark name is the
// shortcut name (abbr is only a fallback) and the category comes from the
// bookmark group.
func MapBookmarks(cfg BookmarksConfig) ([]domain.Shortcut, error) {
	var out []domain.Shortcut

	for _, categoryMap := range cfg {
		for _, category := range sortedKeys(categoryMap) {
			for _, bookmarkMap := range categoryMap[category] {
				for _, name := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[name]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" {
						continue
					}

					title := strings.TrimSpace(name)
					if title == "" {
						title = entry.Abbr
					}

					out = append(out, domain.Shortcut{
						Name:     title,
						URL:      href,
						Category: strings.TrimSpace(category),
					})
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrNothingToImport
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
