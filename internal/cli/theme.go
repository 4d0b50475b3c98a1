package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/newsdeck/internal/domain"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the reader theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		current, _, err := e.store.Theme(ctx)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), current)
			return err
		}

		next := current.Toggle()
		if args[0] != "toggle" {
			next = domain.ParseTheme(args[0])
		}
		if err := e.store.SetTheme(ctx, next); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), next)
		return err
	})
}
