package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the behaviour every backend must share.
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "customShortcuts")
	require.NoError(t, err)
	assert.False(t, found, "fresh storage must not report a value")

	require.NoError(t, s.Set(ctx, "customShortcuts", []byte(`[{"name":"A"}]`)))
	got, found, err := s.Get(ctx, "customShortcuts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"name":"A"}]`, string(got))

	// Overwrite replaces the whole value
	require.NoError(t, s.Set(ctx, "customShortcuts", []byte(`[]`)))
	got, _, err = s.Get(ctx, "customShortcuts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	err = s.Set(ctx, "../escape", []byte("x"))
	assert.True(t, errors.Is(err, ErrInvalidKey), "got %v", err)

	assert.NoError(t, s.Ping(ctx))
	assert.NotEmpty(t, s.Name())
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.True(t, m.LastWrite().IsZero())

	exerciseStorage(t, m)
	assert.False(t, m.LastWrite().IsZero())
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'z'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f, err := OpenFile(dir)
	require.NoError(t, err)

	exerciseStorage(t, f)

	// No temp files left behind after writes
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "customShortcuts.json", entries[0].Name())
}

func TestFileOverwriteKeepsLatestValue(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	f, err := OpenFile(dir)
	require.NoError(t, err)

	for _, v := range []string{`[1]`, `[1,2]`, `[]`} {
		require.NoError(t, f.Set(ctx, "customShortcuts", []byte(v)))
	}

	data, err := os.ReadFile(filepath.Join(dir, "customShortcuts.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are renamed or removed")
}

func TestFileSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	f, err := OpenFile(dir)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "customShortcuts", []byte(`[1]`)))

	reopened, err := OpenFile(dir)
	require.NoError(t, err)
	got, found, err := reopened.Get(ctx, "customShortcuts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[1]`, string(got))
}

func TestOpenFileRejectsEmptyDir(t *testing.T) {
	_, err := OpenFile("")
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newtab.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStorage(t, s)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newtab.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "customShortcuts", []byte(`["x"]`)))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, found, err := s.Get(ctx, "customShortcuts")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["x"]`, string(got))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:already.db?mode=ro", sqliteDSN("file:already.db?mode=ro"))

	dsn := sqliteDSN("/var/lib/newtab/newtab.db")
	assert.Contains(t, dsn, "file:///var/lib/newtab/newtab.db?")
	assert.Contains(t, dsn, "mode=rwc")
	assert.Contains(t, dsn, "busy_timeout")
}

// TestRedis needs a reachable server, e.g. NEWTAB_TEST_REDIS_ADDR=localhost:6379.
func TestRedis(t *testing.T) {
	addr := os.Getenv("NEWTAB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("NEWTAB_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	require.NoError(t, client.Del(ctx, RedisKey("customShortcuts")).Err())

	r := NewRedis(client)
	t.Cleanup(func() { _ = r.Close() })

	exerciseStorage(t, r)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "newtab:customShortcuts", RedisKey("customShortcuts"))
}
