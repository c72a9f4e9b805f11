package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// Reading is what the header shows next to the clock.
type Reading struct {
	Temperature string    `json:"temperature"` // "70°F" or "--°F"
	Location    string    `json:"location"`    // configured label, "--" after a failed lookup
	Celsius     *float64  `json:"celsius,omitempty"`
	Coord       Coord     `json:"coord"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// OK reports whether the reading carries a real temperature.
func (r Reading) OK() bool { return r.Celsius != nil }

// Panel keeps the latest reading for the fallback coordinate and answers
// lookups for other coordinates live. Failures never escape: they turn
// into placeholder readings.
type Panel struct {
	client   *Client
	fallback Coord
	label    string
	log      logger.Logger
	now      func() time.Time

	mu     sync.RWMutex
	latest Reading
}

// NewPanel creates a panel whose initial reading is the placeholder
// temperature with the configured label.
func NewPanel(client *Client, fallback Coord, label string, log logger.Logger) *Panel {
	return &Panel{
		client:   client,
		fallback: fallback,
		label:    label,
		log:      log,
		now:      time.Now,
		latest: Reading{
			Temperature: domain.TemperaturePlaceholder,
			Location:    label,
			Coord:       fallback,
		},
	}
}

// Fallback returns the coordinate used when the caller supplies none.
func (p *Panel) Fallback() Coord { return p.fallback }

// Latest returns the cached fallback reading.
func (p *Panel) Latest() Reading {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Refresh looks up the fallback coordinate and caches the result.
func (p *Panel) Refresh(ctx context.Context) Reading {
	r := p.lookup(ctx, p.fallback)

	p.mu.Lock()
	p.latest = r
	p.mu.Unlock()

	return r
}

// At returns a reading for c. The fallback coordinate is served from cache.
func (p *Panel) At(ctx context.Context, c Coord) Reading {
	if c == p.fallback {
		return p.Latest()
	}
	return p.lookup(ctx, c)
}

func (p *Panel) lookup(ctx context.Context, c Coord) Reading {
	r := Reading{Coord: c, FetchedAt: p.now()}

	celsius, err := p.client.Celsius(ctx, c)
	switch {
	case err == nil:
		r.Celsius = &celsius
		r.Temperature = domain.FormatTemperature(celsius)
		r.Location = p.label
	case errors.Is(err, ErrNoTemperature):
		// The service answered, only the value is missing: keep the label
		p.log.Debug("weather response without temperature",
			logger.Float64("lat", c.Lat), logger.Float64("lon", c.Lon))
		r.Temperature = domain.TemperaturePlaceholder
		r.Location = p.label
	default:
		p.log.Warn("weather lookup failed",
			logger.Float64("lat", c.Lat), logger.Float64("lon", c.Lon), logger.Error(err))
		r.Temperature = domain.TemperaturePlaceholder
		r.Location = domain.LocationPlaceholder
	}
	return r
}
