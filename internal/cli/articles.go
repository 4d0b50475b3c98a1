package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/newsdeck/internal/app"
	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/render"
)

const emptyMessage = "No articles found."

var headlinesCmd = &cobra.Command{
	Use:   "headlines [category]",
	Short: "Print top headlines for a category",
	Long: `Print top headlines for a category as cards.

Categories: ` + strings.Join(domain.Categories, ", ") + `

Examples:
  newsdeck headlines           # Default category from config
  newsdeck headlines science   # Science headlines`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHeadlines,
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search all articles, newest first",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var savedCmd = &cobra.Command{
	Use:     "saved",
	Aliases: []string{"ls"},
	Short:   "List saved articles",
	Args:    cobra.NoArgs,
	RunE:    runSaved,
}

var saveCmd = &cobra.Command{
	Use:   "save <url>",
	Short: "Toggle a saved article off by url",
	Long: `Toggle the saved state of an article that is already in the saved list.
Articles are added to the list from the interactive reader.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(saveCmd)
}

func runHeadlines(cmd *cobra.Command, args []string) error {
	category := cfg.App.DefaultCategory
	if len(args) == 1 {
		category = strings.ToLower(strings.TrimSpace(args[0]))
	}
	if !domain.IsCategory(category) {
		return fmt.Errorf("unknown category %q (want one of %s)", category, strings.Join(domain.Categories, ", "))
	}

	return withEnv(cmd, func(ctx context.Context, e *env) error {
		ctrl := e.controller()
		req, _ := ctrl.SelectCategory(category)
		return printResult(ctx, cmd.OutOrStdout(), ctrl, req)
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		ctrl := e.controller()
		req, ok := ctrl.SubmitSearch(strings.Join(args, " "))
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Nothing to search for.")
			return err
		}
		return printResult(ctx, cmd.OutOrStdout(), ctrl, req)
	})
}

func printResult(ctx context.Context, w io.Writer, ctrl *app.Controller, req app.Request) error {
	ctrl.Complete(ctrl.Fetch(ctx, req))
	st := ctrl.State()
	if st.View != domain.ViewContent {
		_, err := fmt.Fprintln(w, emptyMessage)
		return err
	}
	return printCards(w, st.Cards)
}

func runSaved(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		list, err := e.store.SavedArticles(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved articles.")
			return err
		}
		cards := make([]render.Card, 0, len(list))
		for _, a := range list {
			cards = append(cards, render.NewCard(a, "", true))
		}
		return printCards(cmd.OutOrStdout(), cards)
	})
}

func runSave(cmd *cobra.Command, args []string) error {
	url := args[0]
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		list, err := e.store.SavedArticles(ctx)
		if err != nil {
			return err
		}

		var found *domain.Article
		for i := range list {
			if list[i].URL == url {
				found = &list[i]
				break
			}
		}
		if found == nil {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Not in saved articles: %s\n", url)
			return err
		}

		state, err := e.store.ToggleSave(ctx, *found)
		if err != nil {
			return fmt.Errorf("updating saved articles: %w", err)
		}
		msg := render.ToastRemoved
		if state.NowSaved {
			msg = render.ToastSaved
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
		return err
	})
}

func printCards(w io.Writer, cards []render.Card) error {
	for i, c := range cards {
		meta := []string{c.Source}
		if c.Date != "" {
			meta = append(meta, c.Date)
		}
		if c.Category != "" {
			meta = append(meta, c.Category)
		}

		if _, err := fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n   %s\n   %s %s\n",
			i+1, c.Title,
			strings.Join(meta, " · "),
			c.Description,
			c.Article.URL,
			c.SaveIcon(), c.SaveLabel(),
		); err != nil {
			return err
		}
	}
	return nil
}
