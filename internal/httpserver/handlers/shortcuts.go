package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/form"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/store"
)

// CreateShortcut handles the "New Shortcut" dialog submit.
func CreateShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		f := r.PostForm

		_, err := d.Store.Add(r.Context(), f.Get(form.FieldTitle), f.Get(form.FieldURL), f.Get(form.FieldCategory))
		if err != nil {
			dialog := form.NewShortcut(d.Store.ListCategories()).Fill(f.Get)
			failDialog(w, r, d, dialog, err)
			return
		}

		home(w, r)
	}
}

// UpdateShortcut handles the "Edit Shortcut" dialog submit.
func UpdateShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		f := r.PostForm

		_, err := d.Store.Edit(r.Context(), index, f.Get(form.FieldTitle), f.Get(form.FieldURL), f.Get(form.FieldCategory))
		if err != nil {
			rec, _ := d.Store.Get(index)
			dialog := form.EditShortcut(index, rec, d.Store.ListCategories()).Fill(f.Get)
			failDialog(w, r, d, dialog, err)
			return
		}

		d.Session.ReconcileCategory(d.Store.ListCategories())
		home(w, r)
	}
}

// DeleteShortcut handles the delete confirmation submit.
func DeleteShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		rec, err := d.Store.Delete(r.Context(), index)
		if err != nil {
			failDialog(w, r, d, form.ConfirmDelete(index, rec), err)
			return
		}

		d.Logger.Info("shortcut deleted", logger.String("name", rec.Name), logger.Int("index", index))
		d.Session.ReconcileCategory(d.Store.ListCategories())
		home(w, r)
	}
}

// Open activates a tile. In Normal mode it records the activation and
// redirects to the shortcut; in Edit and Delete mode it opens the
// corresponding dialog instead.
func Open(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			http.NotFound(w, r)
			return
		}

		if mode := d.Session.Mode(); mode != domain.ModeNormal {
			http.Redirect(w, r, tileHref(mode, index), http.StatusSeeOther)
			return
		}

		rec, err := d.Store.RecordActivation(r.Context(), index)
		switch {
		case errors.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			// Navigation still happens; only the counter is lost
			d.Logger.Warn("failed to record activation", logger.Int("index", index), logger.Error(err))
			if rec, err = d.Store.Get(index); err != nil {
				http.NotFound(w, r)
				return
			}
		}

		http.Redirect(w, r, rec.URL, http.StatusFound)
	}
}

// failDialog re-renders a dialog with the validation message, or maps
// other store errors to a status page.
func failDialog(w http.ResponseWriter, r *http.Request, d deps.Deps, dialog form.Dialog, err error) {
	switch {
	case domain.IsValidationError(err):
		dialog = dialog.WithError(err)
		renderPage(w, r, d, &dialog, http.StatusUnprocessableEntity)
	case errors.Is(err, store.ErrNotFound):
		http.NotFound(w, r)
	default:
		d.Logger.Error("shortcut storage failed", logger.Error(err))
		http.Error(w, "could not save shortcuts", http.StatusInternalServerError)
	}
}

// home sends the browser back to the page after a form post.
func home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
