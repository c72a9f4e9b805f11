package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/scheduler"
)

const timeLayout = "2006-01-02 15:04:05"

type componentStatus struct {
	OK              bool                     `json:"ok"`
	Backend         string                   `json:"backend,omitempty"`
	ShortcutsLoaded *int                     `json:"shortcuts_loaded,omitempty"`
	LastSave        string                   `json:"last_save,omitempty"`
	Temperature     string                   `json:"temperature,omitempty"`
	Location        string                   `json:"location,omitempty"`
	LastFetch       string                   `json:"last_fetch,omitempty"`
	Sources         []scheduler.SourceStatus `json:"sources,omitempty"`
	Impact          string                   `json:"impact,omitempty"`
	Error           string                   `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component the page depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"store": checkStore(ctx, d),
		}
		if d.RedisClient != nil {
			components["redis"] = checkRedis(ctx, d)
		}
		if d.Weather != nil {
			components["weather"] = checkWeather(d)
		}
		if d.Importer != nil {
			components["sources"] = checkSources(d)
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if st, ok := components["store"]; ok && !st.OK {
		return "critical" // shortcuts cannot be read or saved
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "operational"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(timeLayout)
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	n := d.Store.Len()
	st := componentStatus{
		OK:              d.Store.Loaded(),
		Backend:         d.Store.Backend(),
		ShortcutsLoaded: &n,
		LastSave:        formatTime(d.Store.LastSave()),
	}
	if !st.OK {
		st.Error = "not loaded"
		return st
	}
	if err := d.Store.Ping(ctx); err != nil {
		st.OK = false
		st.Impact = "changes-not-saved"
		st.Error = err.Error()
	}
	return st
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "changes-not-saved",
			Error:  "timeout",
		}
	}
	return componentStatus{OK: true}
}

func checkWeather(d deps.Deps) componentStatus {
	r := d.Weather.Latest()
	st := componentStatus{
		OK:          r.OK(),
		Temperature: r.Temperature,
		Location:    r.Location,
		LastFetch:   formatTime(r.FetchedAt),
	}
	if !st.OK {
		st.Impact = "placeholder-temperature"
	}
	return st
}

func checkSources(d deps.Deps) componentStatus {
	st := componentStatus{OK: true, Sources: d.Importer.Status()}
	for _, s := range st.Sources {
		if s.Error != "" {
			st.OK = false
			st.Impact = "import-incomplete"
		}
	}
	return st
}
