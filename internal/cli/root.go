// Package cli contains the newsdeck commands.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/newsdeck/internal/app"
	"github.com/samvad-hq/newsdeck/internal/browser"
	"github.com/samvad-hq/newsdeck/internal/config"
	"github.com/samvad-hq/newsdeck/internal/crawler"
	"github.com/samvad-hq/newsdeck/internal/logger"
	"github.com/samvad-hq/newsdeck/internal/render"
	"github.com/samvad-hq/newsdeck/internal/store"
	"github.com/samvad-hq/newsdeck/internal/tui"
	"github.com/samvad-hq/newsdeck/pkg/httpclient"
	"github.com/samvad-hq/newsdeck/pkg/newsapi"
	"github.com/samvad-hq/newsdeck/pkg/publishers"
)

var (
	cfgFile string
	cfg     *config.Config
	log     logger.Logger = logger.NopLogger{}
)

var (
	version = "dev"

	// buildEnv is replaced in tests.
	buildEnv = defaultEnv
	// runTUI is replaced in tests.
	runTUI = tui.Run
)

// env is the wired runtime shared by every command.
type env struct {
	store   *store.Store
	fetcher newsapi.Fetcher
	sharer  render.Sharer
	opener  render.Opener
}

func (e *env) controller() *app.Controller {
	return app.New(app.Options{
		Fetcher:         e.fetcher,
		Store:           e.store,
		Opener:          e.opener,
		Sharer:          e.sharer,
		Log:             log,
		DefaultCategory: cfg.App.DefaultCategory,
	})
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

var rootCmd = &cobra.Command{
	Use:   "newsdeck",
	Short: "Browse news headlines in the terminal",
	Long: `newsdeck fetches headlines from a NewsAPI-compatible service and shows
them as cards. Articles can be saved locally, shared through configured sinks
or a mail draft, and opened in the browser.

Example usage:
  newsdeck                     # Start the interactive reader
  newsdeck headlines sports    # Print sports headlines
  newsdeck search mars rover   # Print search results
  newsdeck saved               # List saved articles
  newsdeck theme dark          # Switch the reader to the dark theme`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
	RunE: runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string reported by --version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./newsdeck.yaml or $XDG_CONFIG_HOME/newsdeck/newsdeck.yaml)")
	rootCmd.Version = version
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err = logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	log.DebugObj("configuration loaded", "config_loaded", map[string]any{
		"store_path":       cfg.Store.Path,
		"default_category": cfg.App.DefaultCategory,
		"enrich_enabled":   cfg.Enrich.Enabled,
		"publishers_file":  cfg.Share.PublishersFile,
	})
	return nil
}

func defaultEnv(ctx context.Context, cfg *config.Config, log logger.Logger) (*env, error) {
	st, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		return nil, err
	}

	hc := httpclient.NewRestyClient(cfg.API.Timeout)

	var enricher newsapi.Enricher
	if cfg.Enrich.Enabled {
		enricher = crawler.NewScraper(nil, crawler.Options{
			Workers:      cfg.Enrich.Workers,
			RequestDelay: cfg.Enrich.RequestDelay,
			UserAgent:    cfg.Enrich.UserAgent,
		}, log)
	}

	if cfg.API.Key == "" {
		log.WarnObj("no api key configured", "config_missing_api_key", nil)
	}
	fetcher := newsapi.NewClient(hc, newsapi.Options{
		BaseURL:  cfg.API.BaseURL,
		APIKey:   cfg.API.Key,
		Country:  cfg.API.Country,
		Timeout:  cfg.API.Timeout,
		Enricher: enricher,
	}, log)

	fanout, err := publishers.FromFile(ctx, cfg.Share.PublishersFile, log)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("loading share sinks: %w", err)
	}
	log.InfoObj("share sinks loaded", "share_sinks_loaded", map[string]any{"count": fanout.Len()})

	return &env{
		store:   st,
		fetcher: fetcher,
		sharer:  fanout,
		opener:  browser.SystemOpener{},
	}, nil
}

// withEnv builds the runtime, runs fn and closes the runtime.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	e, err := buildEnv(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, e.Close())
	}()
	return fn(ctx, e)
}

func runRoot(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		return runTUI(ctx, e.controller())
	})
}
