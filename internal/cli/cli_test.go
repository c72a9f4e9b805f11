package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/store"
)

// setupEnv points the CLI at a fresh file store.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("NEWTAB_CONFIG_FILE", "")
	t.Setenv("NEWTAB_STORAGE", "file")
	t.Setenv("NEWTAB_STORAGE_PATH", dir)
	t.Setenv("NEWTAB_WEATHER_ENABLED", "false")
	t.Setenv("NEWTAB_LOG_LEVEL", "error")
	return dir
}

type harness struct {
	opened []string
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	a := &App{OpenURL: func(u string) error {
		h.opened = append(h.opened, u)
		return nil
	}}

	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestListSeedsDefaults(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	out, err := h.run(t, "", "shortcuts", "list")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "INDEX"))
	assert.Contains(t, lines[1], "Amazon")
	assert.Contains(t, lines[2], "Co-Pilot")
	assert.Contains(t, lines[3], "YouTube")
}

func TestAddEditAndCategories(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	out, err := h.run(t, "", "sc", "add", "Go", "go.dev", "--category", "Dev")
	require.NoError(t, err)
	assert.Equal(t, "Added \"Go\" at index 3 (https://go.dev)\n", out)

	out, err = h.run(t, "", "sc", "categories")
	require.NoError(t, err)
	assert.Equal(t, "Dev\n", out)

	out, err = h.run(t, "", "sc", "edit", "3", "Go Docs", "pkg.go.dev", "--category", "Docs")
	require.NoError(t, err)
	assert.Equal(t, "Saved \"Go Docs\" (https://pkg.go.dev)\n", out)

	out, err = h.run(t, "", "sc", "list", "--category", "Docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Docs")
	assert.NotContains(t, out, "Amazon")
}

func TestAddRejectsBadURL(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	_, err := h.run(t, "", "sc", "add", "Word", "justaword")
	assert.True(t, errors.Is(err, domain.ErrNotFullAddress), "got %v", err)

	out, err := h.run(t, "", "sc", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Word")
}

func TestOpenCountsActivations(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	out, err := h.run(t, "", "sc", "open", "2", "--print")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/\n", out)

	_, err = h.run(t, "", "sc", "open", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.youtube.com/"}, h.opened)

	out, err = h.run(t, "", "sc", "list", "--sort", "frequency")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "YouTube")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "2"), "line %q", lines[1])
}

func TestDeleteConfirmation(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	out, err := h.run(t, "n\n", "sc", "delete", "0")
	require.NoError(t, err)
	assert.Equal(t, "Are you sure you want to delete \"Amazon\"? [y/N] Cancelled\n", out)

	out, err = h.run(t, "y\n", "sc", "delete", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted \"Amazon\"")

	out, err = h.run(t, "", "sc", "delete", "0", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted \"Co-Pilot\"\n", out)

	out, err = h.run(t, "", "sc", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Amazon")
	assert.Contains(t, out, "YouTube")
}

func TestIndexErrors(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	_, err := h.run(t, "", "sc", "delete", "9", "--yes")
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

	_, err = h.run(t, "", "sc", "open", "abc")
	assert.ErrorContains(t, err, `invalid index "abc"`)

	_, err = h.run(t, "", "sc", "list", "--sort", "random")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	setupEnv(t)
	h := &harness{}

	out, err := h.run(t, "", "validate", "example.com/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "url:    https://example.com/docs\n")
	assert.Contains(t, out, "domain: example.com\n")
	assert.Contains(t, out, "icon:   https://www.google.com/s2/favicons?sz=128&domain=example.com\n")

	_, err = h.run(t, "", "validate", "")
	assert.True(t, errors.Is(err, domain.ErrEmptyURL), "got %v", err)
}

func TestVersionCommand(t *testing.T) {
	h := &harness{}

	out, err := h.run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "newtab "), "got %q", out)
}

func TestStorageFlagOverridesEnv(t *testing.T) {
	setupEnv(t)
	other := t.TempDir()
	h := &harness{}

	_, err := h.run(t, "", "--storage-path", other, "sc", "add", "Go", "go.dev")
	require.NoError(t, err)

	// the flag was applied through the environment
	out, err := h.run(t, "", "sc", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Go")
}

func TestInvalidConfigIsAnError(t *testing.T) {
	setupEnv(t)
	t.Setenv("NEWTAB_STORAGE", "floppy")
	h := &harness{}

	_, err := h.run(t, "", "sc", "list")
	assert.ErrorContains(t, err, "Unknown storage backend")
}
