package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the optional TOML file. Every field is optional;
// pointers distinguish "unset" from a zero value.
//
//	[server]
//	listen = ":8080"
//
//	[storage]
//	backend = "sqlite"
//	path = "/var/lib/newtab/newtab.db"
//
//	[weather]
//	location = "East Montpelier, VT"
//	interval = "10m"
type fileConfig struct {
	Server struct {
		Listen          string `toml:"listen"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
		RequestTimeout  string `toml:"request_timeout"`
	} `toml:"server"`

	Log struct {
		Level  string `toml:"level"`
		Pretty *bool  `toml:"pretty"`
	} `toml:"log"`

	Storage struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"storage"`

	Page struct {
		DefaultSort    string `toml:"default_sort"`
		FaviconService string `toml:"favicon_service"`
		SearchURL      string `toml:"search_url"`
	} `toml:"page"`

	Weather struct {
		Enabled  *bool    `toml:"enabled"`
		URL      string   `toml:"url"`
		Lat      *float64 `toml:"lat"`
		Lon      *float64 `toml:"lon"`
		Location string   `toml:"location"`
		Interval string   `toml:"interval"`
		Timeout  string   `toml:"timeout"`
	} `toml:"weather"`

	Sources struct {
		ServiceFile    string `toml:"service_file"`
		BookmarkFile   string `toml:"bookmark_file"`
		ReloadInterval string `toml:"reload_interval"`
		Watch          *bool  `toml:"watch"`
	} `toml:"sources"`

	Redis redisFile `toml:"redis"`

	Access struct {
		AllowedHosts  []string `toml:"allowed_hosts"`
		AllowedCIDRS  []string `toml:"allowed_cidrs"`
		TrustProxy    *bool    `toml:"trust_proxy"`
		RateBurst     *int     `toml:"rate_burst"`
		RatePerMinute *int     `toml:"rate_per_minute"`
	} `toml:"access"`
}

type redisFile struct {
	Addr             string `toml:"addr"`
	Username         string `toml:"username"`
	Password         string `toml:"password"`
	PasswordRequired *bool  `toml:"password_required"`
	DB               *int   `toml:"db"`
}

// readFile decodes the TOML file at path. An empty path yields an empty layer.
func readFile(path string) (fileConfig, error) {
	var f fileConfig
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return f, nil
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orBool(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func orInt(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func orFloat(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// orDuration parses a Go duration string from the file, falling back to
// def when it is empty or malformed.
func orDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
