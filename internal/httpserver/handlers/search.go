package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// Search delegates a query to the search engine. Queries starting with
// "@" are matched against shortcut names first.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))

		if strings.HasPrefix(query, domain.ShortcutPrefix) {
			query = strings.TrimSpace(strings.TrimPrefix(query, domain.ShortcutPrefix))
			if handleShortcutSearch(w, r, query, d) {
				return
			}
		}

		target, ok := domain.SearchURL(d.SearchURL, query)
		if !ok {
			d.Logger.Debug("empty query, redirecting to page")
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		d.Logger.Debug("search delegated", logger.String("query", query))
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// handleShortcutSearch opens the best matching shortcut, returns true if handled
func handleShortcutSearch(w http.ResponseWriter, r *http.Request, query string, d deps.Deps) bool {
	if query == "" {
		return false
	}

	best, ok, err := d.Store.ActivateBest(r.Context(), query)
	if !ok {
		d.Logger.Info("no matching shortcut, falling back to search",
			logger.String("query", query))
		return false
	}
	if err != nil {
		d.Logger.Warn("failed to record activation",
			logger.Int("index", best.Index), logger.Error(err))
	}

	d.Logger.Info("resolved shortcut",
		logger.String("query", query),
		logger.String("name", best.Shortcut.Name),
		logger.String("url", best.Shortcut.URL))

	http.Redirect(w, r, best.Shortcut.URL, http.StatusFound)
	return true
}
