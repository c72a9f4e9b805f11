package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

func weatherServer(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":21.3}}`))
	}))
}

func newPanel(url string) *weather.Panel {
	client := weather.NewClient(url, time.Second, logger.NewNop())
	return weather.NewPanel(client, weather.Coord{Lat: 44.2812, Lon: -72.502}, "East Montpelier, VT", logger.NewNop())
}

func TestWeatherRefresherRefreshesOnStart(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	var calls atomic.Int32
	srv := weatherServer(&calls)
	defer srv.Close()

	panel := newPanel(srv.URL)
	wr := NewWeatherRefresher(panel, logger.NewNop(), time.Hour, nil)

	require.NoError(t, wr.Start(context.Background()))
	defer wr.Stop()

	r := panel.Latest()
	assert.Equal(t, "70°F", r.Temperature)
	assert.Equal(t, "East Montpelier, VT", r.Location)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWeatherRefresherManualTrigger(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	var calls atomic.Int32
	srv := weatherServer(&calls)
	defer srv.Close()

	trigger := make(chan struct{})
	wr := NewWeatherRefresher(newPanel(srv.URL), logger.NewNop(), time.Hour, trigger)
	require.NoError(t, wr.Start(context.Background()))
	defer wr.Stop()

	trigger <- struct{}{}

	assert.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWeatherRefresherTicks(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	var calls atomic.Int32
	srv := weatherServer(&calls)
	defer srv.Close()

	wr := NewWeatherRefresher(newPanel(srv.URL), logger.NewNop(), 20*time.Millisecond, nil)
	require.NoError(t, wr.Start(context.Background()))
	defer wr.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
}

func TestWeatherRefresherStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, leakOptions...)

	ctx, cancel := context.WithCancel(context.Background())
	wr := NewWeatherRefresher(newPanel("http://127.0.0.1:1"), logger.NewNop(), time.Hour, nil)
	require.NoError(t, wr.Start(ctx))

	cancel()

	select {
	case <-wr.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not exit after context cancellation")
	}
	wr.Stop() // no-op after exit
}
