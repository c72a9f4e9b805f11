package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout applied by the router

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	StorageBackend string // "memory" | "file" | "sqlite" | "redis"
	StoragePath    string // sqlite database file, or directory for the file backend

	// Page behaviour
	DefaultSort    string // "alpha" | "frequency"
	FaviconService string // favicon lookup endpoint
	SearchURL      string // search engine endpoint, query appended as ?q=

	// Weather
	WeatherEnabled  bool
	WeatherURL      string        // Open-Meteo forecast endpoint
	WeatherLat      float64       // fallback latitude
	WeatherLon      float64       // fallback longitude
	WeatherLocation string        // label shown next to the temperature
	WeatherInterval time.Duration // refresh interval of the cached reading (default: 10m)
	WeatherTimeout  time.Duration // HTTP timeout of a single lookup

	// Homepage import (optional, empty = disabled)
	ServiceFile    string        // path to a Homepage services.yaml
	BookmarkFile   string        // path to a Homepage bookmarks.yaml
	ReloadInterval time.Duration // interval to re-import the files (default: 24h)
	WatchSources   bool          // re-import on file change

	// Redis (only read when StorageBackend == "redis")
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts  []string // optional, restrict access to specific Host headers
	AllowedCIDRS  []string // optional, restrict every route but /healthz to these IPs/CIDRs
	TrustProxy    bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst     int      // mutating API requests allowed in a burst per IP
	RatePerMinute int      // refill rate per IP
}

// Load reads the configuration from NEWTAB_* environment variables.
// When NEWTAB_CONFIG_FILE points to a TOML file, its values become the
// defaults that environment variables override. Invalid configuration
// panics, like every other fatal startup error.
func Load() *Config {
	f, err := readFile(os.Getenv("NEWTAB_CONFIG_FILE"))
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}
	return fromEnv(f)
}

func fromEnv(f fileConfig) *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NEWTAB_LISTEN_PORT", or(f.Server.Listen, ":8080")),
		ShutdownTimeout: mustDuration("NEWTAB_SHUTDOWN_TIMEOUT", orDuration(f.Server.ShutdownTimeout, 5*time.Second)),
		RequestTimeout:  mustDuration("NEWTAB_REQUEST_TIMEOUT", orDuration(f.Server.RequestTimeout, 10*time.Second)),

		// Logging
		LogLevel:  getenv("NEWTAB_LOG_LEVEL", or(f.Log.Level, "info")),
		PrettyLog: mustBool("NEWTAB_PRETTY_LOG", orBool(f.Log.Pretty, true)),

		// Storage
		StorageBackend: strings.ToLower(getenv("NEWTAB_STORAGE", or(f.Storage.Backend, BackendSQLite))),
		StoragePath:    getenv("NEWTAB_STORAGE_PATH", or(f.Storage.Path, "newtab.db")),

		// Page
		DefaultSort:    getenv("NEWTAB_DEFAULT_SORT", or(f.Page.DefaultSort, "alpha")),
		FaviconService: getenv("NEWTAB_FAVICON_SERVICE", or(f.Page.FaviconService, "https://www.google.com/s2/favicons")),
		SearchURL:      getenv("NEWTAB_SEARCH_URL", or(f.Page.SearchURL, "https://www.google.com/search")),

		// Weather
		WeatherEnabled:  mustBool("NEWTAB_WEATHER_ENABLED", orBool(f.Weather.Enabled, true)),
		WeatherURL:      getenv("NEWTAB_WEATHER_URL", or(f.Weather.URL, "https://api.open-meteo.com/v1/forecast")),
		WeatherLat:      getenvFloat("NEWTAB_WEATHER_LAT", orFloat(f.Weather.Lat, 44.2812)),
		WeatherLon:      getenvFloat("NEWTAB_WEATHER_LON", orFloat(f.Weather.Lon, -72.5020)),
		WeatherLocation: getenv("NEWTAB_WEATHER_LOCATION", or(f.Weather.Location, "East Montpelier, VT")),
		WeatherInterval: mustDuration("NEWTAB_WEATHER_INTERVAL", orDuration(f.Weather.Interval, 10*time.Minute)),
		WeatherTimeout:  mustDuration("NEWTAB_WEATHER_TIMEOUT", orDuration(f.Weather.Timeout, 5*time.Second)),

		// Homepage import
		ServiceFile:    getenv("NEWTAB_SERVICE_FILE", f.Sources.ServiceFile),
		BookmarkFile:   getenv("NEWTAB_BOOKMARK_FILE", f.Sources.BookmarkFile),
		ReloadInterval: mustDuration("NEWTAB_RELOAD_SOURCE_INTERVAL", orDuration(f.Sources.ReloadInterval, 24*time.Hour)),
		WatchSources:   mustBool("NEWTAB_WATCH_SOURCES", orBool(f.Sources.Watch, true)),

		// Access restrictions
		AllowedHosts:  splitAndTrim(getenv("NEWTAB_ALLOWED_HOSTS", strings.Join(f.Access.AllowedHosts, ","))),
		AllowedCIDRS:  parseAllowedIPs(getenv("NEWTAB_ALLOWED_CIDRS", strings.Join(f.Access.AllowedCIDRS, ","))),
		TrustProxy:    mustBool("NEWTAB_TRUST_PROXY", orBool(f.Access.TrustProxy, false)),
		RateBurst:     getenvInt("NEWTAB_RATE_BURST", orInt(f.Access.RateBurst, 30)),
		RatePerMinute: getenvInt("NEWTAB_RATE_PER_MINUTE", orInt(f.Access.RatePerMinute, 120)),
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendRedis:
		loadRedis(cfg, f.Redis)
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown storage backend %q (want memory, file, sqlite or redis)", cfg.StorageBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadRedis fills the redis settings. Address and DB are mandatory once
// the redis backend is selected.
func loadRedis(cfg *Config, f redisFile) {
	cfg.RedisAddr = requireEnv("NEWTAB_REDIS_ADDR", f.Addr)
	cfg.RedisUser = getenv("NEWTAB_REDIS_USERNAME", or(f.Username, "default"))
	cfg.RedisPasswordRequired = mustBool("NEWTAB_REDIS_PASSWORD_REQUIRED", orBool(f.PasswordRequired, true))
	cfg.RedisPassword = getenv("NEWTAB_REDIS_PASSWORD", f.Password)
	cfg.RedisDB = requireEnvInt("NEWTAB_REDIS_DB", f.DB)
	cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: NEWTAB_REDIS_PASSWORD is required when NEWTAB_REDIS_PASSWORD_REQUIRED=true")
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// requireEnv returns the env value, then the file value, and panics when both are empty.
func requireEnv(key, fileValue string) string {
	v := getenv(key, fileValue)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string, fileValue *int) int {
	v := os.Getenv(key)
	if v == "" {
		if fileValue != nil {
			return *fileValue
		}
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
