package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/form"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{"prompt": func(d *form.Dialog) string { return d.Prompt() }}).
		ParseFS(templateFS, "templates/page.html"),
)

type tile struct {
	Index    int
	Name     string
	URL      string
	Icon     string
	Category string
	Clicks   string
	Href     string
}

type pageData struct {
	Clock      string
	Date       string
	Weather    weather.Reading
	Mode       string
	Sort       string
	NextSort   string
	Category   string
	Categories []string
	Tiles      []tile
	Dialog     *form.Dialog
}

// Page renders the new tab page. The dialog query parameter opens one of
// the shortcut dialogs: new, edit (index=N) or delete (index=N).
func Page(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var dialog *form.Dialog
		if kind := form.Kind(q.Get("dialog")); kind != "" {
			dl, err := dialogFor(d, kind, q.Get("index"))
			if err != nil {
				http.NotFound(w, r)
				return
			}
			dialog = &dl
		}

		renderPage(w, r, d, dialog, http.StatusOK)
	}
}

func dialogFor(d deps.Deps, kind form.Kind, rawIndex string) (form.Dialog, error) {
	if kind == form.KindNew {
		return form.NewShortcut(d.Store.ListCategories()), nil
	}

	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return form.Dialog{}, store.ErrNotFound
	}
	rec, err := d.Store.Get(index)
	if err != nil {
		return form.Dialog{}, err
	}

	switch kind {
	case form.KindEdit:
		return form.EditShortcut(index, rec, d.Store.ListCategories()), nil
	case form.KindDelete:
		return form.ConfirmDelete(index, rec), nil
	default:
		return form.Dialog{}, errors.New("unknown dialog")
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, d deps.Deps, dialog *form.Dialog, status int) {
	snap := d.Session.Snapshot()
	now := d.Now()

	data := pageData{
		Clock:      domain.FormatClock(now),
		Date:       domain.FormatDate(now),
		Weather:    currentReading(d),
		Mode:       snap.Mode.String(),
		Sort:       snap.Sort.String(),
		NextSort:   snap.Sort.Toggle().String(),
		Category:   snap.Category,
		Categories: append([]string{domain.AllCategories}, d.Store.ListCategories()...),
		Dialog:     dialog,
	}

	for _, e := range d.Store.View(snap.Sort, snap.Category) {
		data.Tiles = append(data.Tiles, tile{
			Index:    e.Index,
			Name:     e.Shortcut.Name,
			URL:      e.Shortcut.URL,
			Icon:     e.Shortcut.Icon,
			Category: e.Shortcut.Category,
			Clicks:   humanize.Comma(e.Shortcut.Clicks),
			Href:     tileHref(snap.Mode, e.Index),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		d.Logger.Error("failed to render page",
			logger.String("path", r.URL.Path), logger.Error(err))
	}
}

// tileHref is where a tile leads in the given mode.
func tileHref(mode domain.Mode, index int) string {
	i := strconv.Itoa(index)
	switch mode {
	case domain.ModeEdit:
		return "/?dialog=edit&index=" + i
	case domain.ModeDelete:
		return "/?dialog=delete&index=" + i
	default:
		return "/open/" + i
	}
}

func currentReading(d deps.Deps) weather.Reading {
	if d.Weather == nil {
		return weather.Reading{
			Temperature: domain.TemperaturePlaceholder,
			Location:    domain.LocationPlaceholder,
		}
	}
	return d.Weather.Latest()
}
