package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

type shortcutJSON struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Category string `json:"category,omitempty"`
	Clicks   int64  `json:"clicks"`
}

type shortcutRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

type listResponse struct {
	Mode      string         `json:"mode"`
	Sort      string         `json:"sort"`
	Category  string         `json:"category"`
	Shortcuts []shortcutJSON `json:"shortcuts"`
}

func toJSON(e domain.Entry) shortcutJSON {
	return shortcutJSON{
		Index:    e.Index,
		Name:     e.Shortcut.Name,
		URL:      e.Shortcut.URL,
		Icon:     e.Shortcut.Icon,
		Category: e.Shortcut.Category,
		Clicks:   e.Shortcut.Clicks,
	}
}

// ListShortcuts returns the current view. sort and category query
// parameters override the session for this request only.
func ListShortcuts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Session.Snapshot()
		q := r.URL.Query()

		if raw := q.Get("sort"); raw != "" {
			m, err := domain.ParseSortMode(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			snap.Sort = m
		}
		if c := q.Get("category"); c != "" {
			snap.Category = c
		}

		entries := d.Store.View(snap.Sort, snap.Category)
		out := listResponse{
			Mode:      snap.Mode.String(),
			Sort:      snap.Sort.String(),
			Category:  snap.Category,
			Shortcuts: make([]shortcutJSON, 0, len(entries)),
		}
		for _, e := range entries {
			out.Shortcuts = append(out.Shortcuts, toJSON(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func AddShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shortcutRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		e, err := d.Store.Add(r.Context(), req.Name, req.URL, req.Category)
		if err != nil {
			writeStoreError(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, toJSON(e))
	}
}

func EditShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "shortcut not found")
			return
		}
		var req shortcutRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		e, err := d.Store.Edit(r.Context(), index, req.Name, req.URL, req.Category)
		if err != nil {
			writeStoreError(w, d, err)
			return
		}
		d.Session.ReconcileCategory(d.Store.ListCategories())
		writeJSON(w, http.StatusOK, toJSON(e))
	}
}

func RemoveShortcut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "shortcut not found")
			return
		}
		rec, err := d.Store.Delete(r.Context(), index)
		if err != nil {
			writeStoreError(w, d, err)
			return
		}
		d.Session.ReconcileCategory(d.Store.ListCategories())
		writeJSON(w, http.StatusOK, toJSON(domain.Entry{Index: index, Shortcut: rec}))
	}
}

// Activate records one activation and returns the updated record.
func Activate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(r)
		if !ok {
			writeError(w, http.StatusNotFound, "shortcut not found")
			return
		}
		rec, err := d.Store.RecordActivation(r.Context(), index)
		if err != nil {
			writeStoreError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, toJSON(domain.Entry{Index: index, Shortcut: rec}))
	}
}

func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"active":     d.Session.Category(),
			"categories": d.Store.ListCategories(),
		})
	}
}

type modeRequest struct {
	Event string `json:"event"`
}

func GetMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"mode": d.Session.Mode().String()})
	}
}

// PutMode fires a mode event: {"event": "edit" | "delete" | "done"}.
func PutMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ev, err := domain.ParseModeEvent(req.Event)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"mode": d.Session.Fire(ev).String()})
	}
}

func PutCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Category string `json:"category"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"category": setCategory(d, req.Category)})
	}
}

func PutSort(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Sort string `json:"sort"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		m, err := domain.ParseSortMode(req.Sort)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		d.Session.SetSort(m)
		writeJSON(w, http.StatusOK, map[string]string{"sort": m.String()})
	}
}

type validateResponse struct {
	URL    string `json:"url"`
	Domain string `json:"domain"`
	Icon   string `json:"icon"`
}

// ValidateURL runs URL validation without saving anything.
func ValidateURL(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := d.Store.Validate(r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, validateResponse{URL: v.URL, Domain: v.Domain, Icon: d.Store.DeriveIcon(v.Domain)})
	}
}

func Clock(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := d.Now()
		writeJSON(w, http.StatusOK, map[string]string{
			"clock": domain.FormatClock(now),
			"date":  domain.FormatDate(now),
		})
	}
}

// Weather returns the reading for lat/lon, or the cached fallback
// reading when they are absent or invalid.
func Weather(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Weather == nil {
			writeJSON(w, http.StatusOK, currentReading(d))
			return
		}

		q := r.URL.Query()
		c, ok := weather.ParseCoord(q.Get("lat"), q.Get("lon"))
		if !ok {
			c = d.Weather.Fallback()
		}
		writeJSON(w, http.StatusOK, d.Weather.At(r.Context(), c))
	}
}
