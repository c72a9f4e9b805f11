// Package cli implements the newtab command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/newtab/internal/app"
	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/utils"
)

// App carries global flags and lazily loaded configuration.
type App struct {
	ConfigFile  string
	Storage     string
	StoragePath string
	Verbose     bool

	// OpenURL launches a browser. Replaced in tests.
	OpenURL func(url string) error

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{OpenURL: openBrowser})
}

func newRootCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "newtab",
		Short:        "Browser new tab page with editable shortcuts",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the page on :8080
  newtab

  # Same page in the terminal
  newtab tui

  # Scriptable shortcut management
  newtab shortcuts add Go go.dev --category Dev
  newtab shortcuts list --sort frequency
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, a)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.ConfigFile, "config", "", "TOML config file (default $NEWTAB_CONFIG_FILE)")
	pf.StringVar(&a.Storage, "storage", "", "storage backend: memory, file, sqlite or redis (default $NEWTAB_STORAGE)")
	pf.StringVar(&a.StoragePath, "storage-path", "", "sqlite file or file-backend directory (default $NEWTAB_STORAGE_PATH)")
	pf.BoolVarP(&a.Verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newServeCmd(a),
		newTUICmd(a),
		newShortcutsCmd(a),
		newValidateCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// Config loads the configuration once. Flags are applied through the
// environment so that they take the same validation path as env vars.
func (a *App) Config() (cfg *config.Config, err error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	for key, val := range map[string]string{
		"NEWTAB_CONFIG_FILE":  a.ConfigFile,
		"NEWTAB_STORAGE":      a.Storage,
		"NEWTAB_STORAGE_PATH": a.StoragePath,
	} {
		if val != "" {
			if err := os.Setenv(key, val); err != nil {
				return nil, err
			}
		}
	}

	// config.Load panics on invalid configuration
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	a.cfg = config.Load()
	return a.cfg, nil
}

// Logger returns the process logger. One-shot commands only log warnings
// unless --verbose is set, so their stdout stays scriptable.
func (a *App) Logger(cfg *config.Config, longRunning bool) logger.Logger {
	level := cfg.LogLevel
	switch {
	case a.Verbose:
		level = "debug"
	case !longRunning:
		level = "warn"
	}
	return logger.New(level, cfg.PrettyLog)
}

// withStore opens the configured store, runs fn and closes the storage.
func (a *App) withStore(ctx context.Context, fn func(st *store.Store, cfg *config.Config, log logger.Logger) error) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	log := a.Logger(cfg, false)
	defer func() { _ = log.Sync() }()

	st, storage, _, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer utils.MustClose(storage, storage.Name()+" storage", log)

	return fn(st, cfg, log)
}
