package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		fileValue string
		want      string
		wantPanic bool
	}{
		{
			name:  "variable set",
			key:   "TEST_VAR",
			value: "test_value",
			want:  "test_value",
		},
		{
			name:      "env wins over file",
			key:       "TEST_VAR_BOTH",
			value:     "from_env",
			fileValue: "from_file",
			want:      "from_env",
		},
		{
			name:      "file value used when env missing",
			key:       "TEST_VAR_FILE",
			fileValue: "from_file",
			want:      "from_file",
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key, tt.fileValue)
			if !tt.wantPanic && result != tt.want {
				t.Errorf("requireEnv() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestRequireEnvInt(t *testing.T) {
	seven := 7

	tests := []struct {
		name      string
		key       string
		value     string
		fileValue *int
		expected  int
		wantPanic bool
	}{
		{
			name:     "valid integer",
			key:      "TEST_INT",
			value:    "42",
			expected: 42,
		},
		{
			name:      "file fallback",
			key:       "TEST_INT_FILE",
			fileValue: &seven,
			expected:  7,
		},
		{
			name:      "invalid integer",
			key:       "TEST_INT_INVALID",
			value:     "not_a_number",
			wantPanic: true,
		},
		{
			name:      "missing variable",
			key:       "TEST_INT_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnvInt() should have panicked")
					}
				}()
			}

			result := requireEnvInt(tt.key, tt.fileValue)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("requireEnvInt() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "TEST_BOOL", "true", false, true},
		{"false value", "TEST_BOOL_FALSE", "false", true, false},
		{"invalid value uses default", "TEST_BOOL_INVALID", "invalid", true, true},
		{"missing variable uses default", "TEST_BOOL_MISSING", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a.example.com", "b", "c"}, splitAndTrim(` a.example.com, "b" ,, 'c'`))
}

func TestLoadDefaults(t *testing.T) {
	cfg := fromEnv(fileConfig{})

	assert.Equal(t, ":8080", cfg.ListenPort)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "alpha", cfg.DefaultSort)
	assert.Equal(t, "East Montpelier, VT", cfg.WeatherLocation)
	assert.InDelta(t, 44.2812, cfg.WeatherLat, 1e-9)
	assert.InDelta(t, -72.5020, cfg.WeatherLon, 1e-9)
	assert.Equal(t, 10*time.Minute, cfg.WeatherInterval)
	assert.Empty(t, cfg.ServiceFile)
	assert.Empty(t, cfg.RedisAddr, "redis settings are not read for other backends")
}

func TestLoadFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newtab.toml")
	content := `
[server]
listen = ":9090"

[log]
pretty = false

[storage]
backend = "file"
path = "/tmp/newtab"

[weather]
location = "Paris"
lat = 48.85
interval = "15m"

[access]
allowed_cidrs = ["10.0.0.0/8", "127.0.0.1"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("NEWTAB_CONFIG_FILE", path)
	t.Setenv("NEWTAB_LISTEN_PORT", ":7070")

	cfg := Load()

	assert.Equal(t, ":7070", cfg.ListenPort, "env overrides file")
	assert.False(t, cfg.PrettyLog)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/newtab", cfg.StoragePath)
	assert.Equal(t, "Paris", cfg.WeatherLocation)
	assert.InDelta(t, 48.85, cfg.WeatherLat, 1e-9)
	assert.Equal(t, 15*time.Minute, cfg.WeatherInterval)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.AllowedCIDRS)
}

func TestLoadBadFilePanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nlisten ="), 0o644))
	t.Setenv("NEWTAB_CONFIG_FILE", path)

	assert.Panics(t, func() { Load() })
}

func TestRedisBackendRequiresSettings(t *testing.T) {
	t.Setenv("NEWTAB_STORAGE", "redis")
	assert.Panics(t, func() { fromEnv(fileConfig{}) }, "missing NEWTAB_REDIS_ADDR")

	t.Setenv("NEWTAB_REDIS_ADDR", "localhost:6379")
	t.Setenv("NEWTAB_REDIS_DB", "0")
	assert.Panics(t, func() { fromEnv(fileConfig{}) }, "password required by default")

	t.Setenv("NEWTAB_REDIS_PASSWORD_REQUIRED", "false")
	cfg := fromEnv(fileConfig{})
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestUnknownBackendPanics(t *testing.T) {
	t.Setenv("NEWTAB_STORAGE", "mongo")
	assert.Panics(t, func() { fromEnv(fileConfig{}) })
}
