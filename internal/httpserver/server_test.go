package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/kv"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/session"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

var fixedNow = time.Date(2024, time.March, 4, 9, 5, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	handler http.Handler
	store   *store.Store
	session *session.Session
	reload  chan struct{}
}

func newHarness(t *testing.T, mutate ...func(*deps.Deps)) *harness {
	t.Helper()

	st := store.New(kv.NewMemory())
	require.NoError(t, st.Load(context.Background()))

	d := deps.Deps{
		Logger:        logger.NewNop(),
		StartTime:     fixedNow.Add(-time.Minute),
		Version:       "test",
		TimeNow:       func() time.Time { return fixedNow },
		RateBurst:     100,
		RatePerMinute: 100,
		Store:         st,
		Session:       session.New(domain.AlphaSort),
		ReloadTrigger: make(chan struct{}, 1),
	}
	for _, m := range mutate {
		m(&d)
	}

	return &harness{
		t:       t,
		handler: NewRouter(time.Second, d.Logger, d),
		store:   st,
		session: d.Session,
		reload:  d.ReloadTrigger,
	}
}

func (h *harness) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(target string) *httptest.ResponseRecorder {
	return h.do(http.MethodGet, target, "", "")
}

func (h *harness) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	return h.do(http.MethodPost, target, values.Encode(), "application/x-www-form-urlencoded")
}

func (h *harness) json(method, target, body string) *httptest.ResponseRecorder {
	return h.do(method, target, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestPageRendersSeededGrid(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "9:05am")
	assert.Contains(t, body, "Monday, Mar 4")
	assert.Contains(t, body, "--°F")
	for _, name := range []string{"Amazon", "Co-Pilot", "YouTube"} {
		assert.Contains(t, body, name)
	}
	assert.Contains(t, body, `href="/open/0"`)
	assert.NotContains(t, body, "DONE")
}

func TestPageTilesFollowMode(t *testing.T) {
	h := newHarness(t)

	rec := h.postForm("/mode/edit", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, domain.ModeEdit, h.session.Mode())

	body := h.get("/").Body.String()
	assert.Contains(t, body, `href="/?dialog=edit&amp;index=0"`)
	assert.Contains(t, body, "DONE")

	h.postForm("/mode/delete", nil)
	body = h.get("/").Body.String()
	assert.Contains(t, body, `href="/?dialog=delete&amp;index=0"`)

	h.postForm("/mode/done", nil)
	assert.Equal(t, domain.ModeNormal, h.session.Mode())

	assert.Equal(t, http.StatusBadRequest, h.postForm("/mode/sideways", nil).Code)
}

func TestPageDialogs(t *testing.T) {
	h := newHarness(t)

	body := h.get("/?dialog=new").Body.String()
	assert.Contains(t, body, "New Shortcut")
	assert.Contains(t, body, `action="/shortcuts"`)

	body = h.get("/?dialog=edit&index=2").Body.String()
	assert.Contains(t, body, "Edit Shortcut")
	assert.Contains(t, body, `value="YouTube"`)

	body = h.get("/?dialog=delete&index=0").Body.String()
	assert.Contains(t, body, "Are you sure you want to delete")
	assert.Contains(t, body, "Amazon")

	assert.Equal(t, http.StatusNotFound, h.get("/?dialog=edit&index=9").Code)
	assert.Equal(t, http.StatusNotFound, h.get("/?dialog=edit&index=x").Code)
}

func TestFormLifecycle(t *testing.T) {
	h := newHarness(t)
	n := h.store.Len()

	rec := h.postForm("/shortcuts", url.Values{"title": {"Go"}, "url": {"go.dev"}, "category": {"Dev"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, n+1, h.store.Len())

	added, err := h.store.Get(n)
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", added.URL)
	assert.Equal(t, "Dev", added.Category)

	rec = h.postForm("/shortcuts/3", url.Values{"title": {"Golang"}, "url": {"go.dev/doc"}, "category": {""}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	edited, _ := h.store.Get(n)
	assert.Equal(t, "Golang", edited.Name)

	rec = h.postForm("/shortcuts/3/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, n, h.store.Len())
}

func TestFormValidationRerendersDialog(t *testing.T) {
	h := newHarness(t)
	n := h.store.Len()

	rec := h.postForm("/shortcuts", url.Values{"title": {"Word"}, "url": {"justaword"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "full website address like example.com")
	assert.Contains(t, body, `value="justaword"`)
	assert.Equal(t, n, h.store.Len())

	rec = h.postForm("/shortcuts", url.Values{"title": {""}, "url": {"example.com"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter both a Title and a URL.")

	assert.Equal(t, http.StatusNotFound, h.postForm("/shortcuts/42", url.Values{"title": {"x"}, "url": {"x.com"}}).Code)
	assert.Equal(t, http.StatusNotFound, h.postForm("/shortcuts/42/delete", nil).Code)
}

func TestOpenRecordsActivation(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/open/2")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://www.youtube.com/", rec.Header().Get("Location"))

	yt, _ := h.store.Get(2)
	assert.Equal(t, int64(1), yt.Clicks)

	assert.Equal(t, http.StatusNotFound, h.get("/open/7").Code)
}

func TestOpenInEditModeOpensDialog(t *testing.T) {
	h := newHarness(t)
	h.session.Fire(domain.EventEnterEdit)

	rec := h.get("/open/1")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?dialog=edit&index=1", rec.Header().Get("Location"))

	cp, _ := h.store.Get(1)
	assert.Zero(t, cp.Clicks)
}

func TestCategoryAndSort(t *testing.T) {
	h := newHarness(t)
	_, err := h.store.Add(context.Background(), "Bank", "bank.example.com", "Money")
	require.NoError(t, err)

	h.postForm("/category", url.Values{"category": {"Money"}})
	assert.Equal(t, "Money", h.session.Category())
	body := h.get("/").Body.String()
	assert.Contains(t, body, "Bank")
	assert.NotContains(t, body, "YouTube")

	h.postForm("/category", url.Values{"category": {"Nope"}})
	assert.Equal(t, domain.AllCategories, h.session.Category())

	h.postForm("/sort", nil)
	assert.Equal(t, domain.FrequencySort, h.session.Sort())
	h.postForm("/sort", url.Values{"sort": {"alpha"}})
	assert.Equal(t, domain.AlphaSort, h.session.Sort())
	assert.Equal(t, http.StatusBadRequest, h.postForm("/sort", url.Values{"sort": {"random"}}).Code)
}

func TestAPIShortcutLifecycle(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/api/shortcuts", `{"name":"Go","url":"go.dev","category":"Dev"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "https://go.dev", created["url"])
	assert.EqualValues(t, 3, created["index"])

	rec = h.json(http.MethodPost, "/api/shortcuts/3/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["clicks"])

	rec = h.json(http.MethodPut, "/api/shortcuts/3", `{"name":"Golang","url":"https://go.dev/doc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	edited := decode[map[string]any](t, rec)
	assert.Equal(t, "Golang", edited["name"])
	assert.EqualValues(t, 1, edited["clicks"])

	rec = h.get("/api/shortcuts?sort=frequency")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Sort      string           `json:"sort"`
		Shortcuts []map[string]any `json:"shortcuts"`
	}](t, rec)
	assert.Equal(t, "frequency", list.Sort)
	require.Len(t, list.Shortcuts, 4)
	assert.Equal(t, "Golang", list.Shortcuts[0]["name"])

	rec = h.json(http.MethodDelete, "/api/shortcuts/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, h.store.Len())

	assert.Equal(t, http.StatusNotFound, h.json(http.MethodDelete, "/api/shortcuts/3", "").Code)
}

func TestAPIValidationErrors(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPost, "/api/shortcuts", `{"name":"x","url":"not a url"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "The URL you entered doesn't seem valid. Please check it.", decode[map[string]string](t, rec)["error"])

	assert.Equal(t, http.StatusBadRequest, h.json(http.MethodPost, "/api/shortcuts", `{`).Code)

	rec = h.get("/api/validate?url=" + url.QueryEscape(" example.com "))
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[map[string]string](t, rec)
	assert.Equal(t, "https://example.com", v["url"])
	assert.Equal(t, "example.com", v["domain"])
	assert.Contains(t, v["icon"], "domain=example.com")

	rec = h.get("/api/validate?url=")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Please enter a URL.", decode[map[string]string](t, rec)["error"])
}

func TestAPIModeAndCategory(t *testing.T) {
	h := newHarness(t)

	rec := h.json(http.MethodPut, "/api/mode", `{"event":"delete"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "delete", decode[map[string]string](t, rec)["mode"])
	assert.Equal(t, "delete", decode[map[string]string](t, h.get("/api/mode"))["mode"])
	assert.Equal(t, http.StatusBadRequest, h.json(http.MethodPut, "/api/mode", `{"event":"fly"}`).Code)

	rec = h.json(http.MethodPut, "/api/category", `{"category":"Missing"}`)
	assert.Equal(t, domain.AllCategories, decode[map[string]string](t, rec)["category"])

	rec = h.json(http.MethodPut, "/api/sort", `{"sort":"frequency"}`)
	assert.Equal(t, "frequency", decode[map[string]string](t, rec)["sort"])

	rec = h.get("/api/clock")
	assert.Equal(t, map[string]string{"clock": "9:05am", "date": "Monday, Mar 4"}, decode[map[string]string](t, rec))
}

func TestAPIWeather(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newHarness(t)
		r := decode[weather.Reading](t, h.get("/api/weather"))
		assert.Equal(t, "--°F", r.Temperature)
		assert.Equal(t, "--", r.Location)
	})

	t.Run("live coordinates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "51.5", r.URL.Query().Get("latitude"))
			_, _ = w.Write([]byte(`{"current_weather":{"temperature":21.3}}`))
		}))
		defer srv.Close()

		panel := weather.NewPanel(weather.NewClient(srv.URL, time.Second, logger.NewNop()),
			weather.Coord{Lat: 44.2812, Lon: -72.502}, "East Montpelier, VT", logger.NewNop())
		h := newHarness(t, func(d *deps.Deps) { d.Weather = panel })

		r := decode[weather.Reading](t, h.get("/api/weather?lat=51.5&lon=-0.12"))
		assert.Equal(t, "70°F", r.Temperature)
		assert.Equal(t, "East Montpelier, VT", r.Location)
	})
}

func TestSearch(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/search?q=" + url.QueryEscape("go generics & tests"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://www.google.com/search?q=go+generics+%26+tests", rec.Header().Get("Location"))

	rec = h.get("/search?q=+++")
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = h.get("/search?q=" + url.QueryEscape("@you"))
	assert.Equal(t, "https://www.youtube.com/", rec.Header().Get("Location"))
	yt, _ := h.store.Get(2)
	assert.Equal(t, int64(1), yt.Clicks)

	rec = h.get("/search?q=" + url.QueryEscape("@qqqq"))
	assert.Equal(t, "https://www.google.com/search?q=qqqq", rec.Header().Get("Location"))
}

func TestInfraEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.InDelta(t, 60.0, health["uptime_seconds"], 0.001)

	rec = h.get("/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ready"])

	rec = h.get("/infra")
	require.Equal(t, http.StatusOK, rec.Code)
	infra := decode[struct {
		Status     string                    `json:"status"`
		Components map[string]map[string]any `json:"components"`
	}](t, rec)
	assert.Equal(t, "operational", infra.Status)
	assert.Equal(t, "memory", infra.Components["store"]["backend"])
	assert.EqualValues(t, 3, infra.Components["store"]["shortcuts_loaded"])
}

func TestReadyzBeforeLoad(t *testing.T) {
	h := newHarness(t, func(d *deps.Deps) { d.Store = store.New(kv.NewMemory()) })
	assert.Equal(t, http.StatusServiceUnavailable, h.get("/readyz").Code)
}

func TestReload(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/reload", "", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "✅ Reload triggered successfully\n", rec.Body.String())

	// buffer of one is still full
	rec = h.do(http.MethodPost, "/reload", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	<-h.reload
}

func TestAccessRestrictions(t *testing.T) {
	h := newHarness(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.AllowedHosts = []string{"newtab.home"}
	})

	// httptest requests come from 192.0.2.1 with Host example.com
	assert.Equal(t, http.StatusForbidden, h.get("/").Code)
	assert.Equal(t, http.StatusForbidden, h.get("/api/shortcuts").Code)
	assert.Equal(t, http.StatusForbidden, h.get("/readyz").Code)
	assert.Equal(t, http.StatusOK, h.get("/healthz").Code)
}
