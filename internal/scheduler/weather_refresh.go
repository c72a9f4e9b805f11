package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

// WeatherRefresher keeps the cached fallback reading of a weather panel fresh.
type WeatherRefresher struct {
	panel         *weather.Panel
	logger        logger.Logger
	interval      time.Duration
	manualTrigger chan struct{}
	stopCh        chan struct{}
	doneCh        chan struct{}
	stopOnce      sync.Once
}

// NewWeatherRefresher creates a refresher. manualTrigger may be nil.
func NewWeatherRefresher(
	panel *weather.Panel,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *WeatherRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &WeatherRefresher{
		panel:         panel,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start refreshes once, then keeps refreshing every interval until Stop
// or ctx cancellation. Lookup failures are absorbed by the panel.
func (wr *WeatherRefresher) Start(ctx context.Context) error {
	wr.refresh(ctx)

	ticker := time.NewTicker(wr.interval)
	go func() {
		defer close(wr.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				wr.refresh(ctx)
			case <-wr.manualTrigger:
				wr.logger.Info("manual weather refresh triggered")
				wr.refresh(ctx)
			case <-wr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the refresher and waits for its goroutine to exit.
// Safe to call more than once, but only after Start.
func (wr *WeatherRefresher) Stop() {
	wr.stopOnce.Do(func() { close(wr.stopCh) })
	<-wr.doneCh
}

func (wr *WeatherRefresher) refresh(ctx context.Context) {
	r := wr.panel.Refresh(ctx)
	wr.logger.Debug("weather refreshed",
		logger.String("temperature", r.Temperature),
		logger.String("location", r.Location))
}
