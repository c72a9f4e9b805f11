package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// Reload triggers a manual source import and weather refresh.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importTriggered := trigger(d, d.ReloadTrigger, "import", r)
		weatherTriggered := trigger(d, d.WeatherTrigger, "weather", r)

		if importTriggered || weatherTriggered {
			w.WriteHeader(http.StatusAccepted)
			if _, err := w.Write([]byte("✅ Reload triggered successfully\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return
		}

		w.WriteHeader(http.StatusTooManyRequests)
		if _, err := w.Write([]byte("⏳ Reload already in progress, please wait\n")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}

// trigger does a non-blocking send; a nil channel never triggers.
func trigger(d deps.Deps, ch chan struct{}, what string, r *http.Request) bool {
	if ch == nil {
		return false
	}
	select {
	case ch <- struct{}{}:
		d.Logger.Info("manual reload triggered via endpoint",
			logger.String("target", what),
			logger.String("remote_ip", r.RemoteAddr))
		return true
	default:
		d.Logger.Warn("reload already in progress",
			logger.String("target", what),
			logger.String("remote_ip", r.RemoteAddr))
		return false
	}
}
