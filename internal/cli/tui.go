package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/session"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/tui"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

func newTUICmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the new tab page in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withStore(ctx, func(st *store.Store, cfg *config.Config, log logger.Logger) error {
				sort, err := domain.ParseSortMode(cfg.DefaultSort)
				if err != nil {
					return err
				}

				opts := tui.Options{
					Store:   st,
					Session: session.New(sort),
					Open:    a.OpenURL,
					Logger:  log,
				}
				if cfg.WeatherEnabled {
					client := weather.NewClient(cfg.WeatherURL, cfg.WeatherTimeout, log)
					opts.Weather = weather.NewPanel(client, weather.Coord{Lat: cfg.WeatherLat, Lon: cfg.WeatherLon}, cfg.WeatherLocation, log)
				}
				return tui.Run(ctx, opts)
			})
		},
	}
}
