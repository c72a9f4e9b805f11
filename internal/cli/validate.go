package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

func newValidateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate URL",
		Short: "Check a URL the way the shortcut dialogs do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := domain.Validate(args[0])
			if err != nil {
				return err
			}

			favicon := ""
			if cfg, cerr := a.Config(); cerr == nil {
				favicon = cfg.FaviconService
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "url:    %s\n", v.URL)
			fmt.Fprintf(out, "domain: %s\n", v.Domain)
			fmt.Fprintf(out, "icon:   %s\n", domain.FaviconURL(favicon, v.Domain))
			return nil
		},
	}
}
