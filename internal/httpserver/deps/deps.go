package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/scheduler"
	"github.com/MrSnakeDoc/newtab/internal/session"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time    // for testing, defaults to time.Now
	AllowedHosts   []string            // Host headers allowed to access the server
	AllowedCIDRS   []string            // IPs allowed to access infra endpoints
	TrustProxy     bool                // true if running behind a trusted reverse proxy
	RateBurst      int                 // Burst of mutating requests per client IP
	RatePerMinute  int                 // Refill rate of mutating requests per client IP
	Store          *store.Store        // Shortcut collection
	Session        *session.Session    // Mode, active category, sort
	Weather        *weather.Panel      // Temperature panel (nil when disabled)
	Importer       *scheduler.Importer // Homepage source importer (nil without sources)
	RedisClient    *redis.Client       // Set only with the redis backend
	SearchURL      string              // Search engine endpoint
	ReloadTrigger  chan struct{}       // Manual source import (nil without sources)
	WeatherTrigger chan struct{}       // Manual weather refresh (nil when disabled)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
