package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
)

// ModeEvent fires edit, delete or done from the bottom bar.
func ModeEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := domain.ParseModeEvent(chi.URLParam(r, "event"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.Session.Fire(ev)
		home(w, r)
	}
}

// SelectCategory sets the category filter. A category no shortcut
// carries falls back to All.
func SelectCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		setCategory(d, r.PostForm.Get("category"))
		home(w, r)
	}
}

// SelectSort sets the sort order, or toggles it when none is given.
func SelectSort(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		raw := r.PostForm.Get("sort")
		if raw == "" {
			d.Session.ToggleSort()
			home(w, r)
			return
		}

		m, err := domain.ParseSortMode(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d.Session.SetSort(m)
		home(w, r)
	}
}

func setCategory(d deps.Deps, category string) string {
	d.Session.SetCategory(category)
	d.Session.ReconcileCategory(d.Store.ListCategories())
	return d.Session.Category()
}
