package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/form"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/store"
)

func newShortcutsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shortcuts",
		Aliases: []string{"sc"},
		Short:   "Manage shortcuts from the command line",
	}
	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newOpenCmd(a),
		newCategoriesCmd(a),
	)
	return cmd
}

func newListCmd(a *App) *cobra.Command {
	var sortFlag, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List shortcuts in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store, cfg *config.Config, _ logger.Logger) error {
				if sortFlag == "" {
					sortFlag = cfg.DefaultSort
				}
				mode, err := domain.ParseSortMode(sortFlag)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "INDEX\tNAME\tURL\tCATEGORY\tCLICKS")
				for _, e := range st.View(mode, category) {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						e.Index, e.Shortcut.Name, e.Shortcut.URL, e.Shortcut.Category, humanize.Comma(int64(e.Shortcut.Clicks)))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "", "alpha or frequency (default from config)")
	cmd.Flags().StringVar(&category, "category", domain.AllCategories, "only show this category")
	return cmd
}

func newAddCmd(a *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Add a shortcut",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store, _ *config.Config, _ logger.Logger) error {
				e, err := st.Add(cmd.Context(), args[0], args[1], category)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q at index %d (%s)\n", e.Shortcut.Name, e.Index, e.Shortcut.URL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "optional category")
	return cmd
}

func newEditCmd(a *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "edit INDEX NAME URL",
		Short: "Replace a shortcut's name, URL and category",
		Long:  "Replace a shortcut's name, URL and category. The click counter is kept.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(st *store.Store, _ *config.Config, _ logger.Logger) error {
				e, err := st.Edit(cmd.Context(), index, args[1], args[2], category)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", e.Shortcut.Name, e.Shortcut.URL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "optional category")
	return cmd
}

func newDeleteCmd(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete a shortcut after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(st *store.Store, _ *config.Config, _ logger.Logger) error {
				rec, err := st.Get(index)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !yes {
					fmt.Fprintf(out, "%s [y/N] ", form.ConfirmDelete(index, rec).Prompt())
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					switch strings.ToLower(strings.TrimSpace(answer)) {
					case "y", "yes":
					default:
						fmt.Fprintln(out, "Cancelled")
						return nil
					}
				}

				removed, err := st.Delete(cmd.Context(), index)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %q\n", removed.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newOpenCmd(a *App) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open INDEX",
		Short: "Open a shortcut and count the activation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(st *store.Store, _ *config.Config, _ logger.Logger) error {
				rec, err := st.RecordActivation(cmd.Context(), index)
				if err != nil {
					return err
				}
				if printOnly {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), rec.URL)
					return err
				}
				return a.OpenURL(rec.URL)
			})
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the URL instead of launching a browser")
	return cmd
}

func newCategoriesCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store, _ *config.Config, _ logger.Logger) error {
				for _, c := range st.ListCategories() {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			})
		},
	}
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}
