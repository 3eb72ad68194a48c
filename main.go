package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pokedex",
		Short: "Scrape every Pokémon's Pokédex data into a CSV file",
		Long: `Fetches the national Pokédex listing, visits each Pokémon's page one at a
time and writes a single CSV when the pass is complete.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	registerFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	log, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	rc := NewRunContext(uuid.NewString())
	log.Info("Starting Pokédex scrape",
		zap.String("run_id", rc.RunID),
		zap.String("listing_url", cfg.ListingURL),
		zap.Duration("delay", cfg.Delay),
	)

	fetcher, err := NewPageFetcher(FetcherConfig{
		UserAgent: cfg.UserAgent,
		Delay:     cfg.Delay,
		Timeout:   cfg.Timeout,
		Debug:     cfg.LogLevel == "debug",
	}, log)
	if err != nil {
		return err
	}

	scraper := NewScraper(cfg, fetcher, rc, log).WithSummary(out)

	if cfg.DatabaseURL != "" {
		store, err := OpenStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("Failed to initialize database", zap.Error(err))
			return err
		}
		defer store.Close()
		scraper.WithStore(store)
	}

	if cfg.Images != "" {
		saver, err := NewImageSaver(cfg.Images, fetcher, log)
		if err != nil {
			return err
		}
		scraper.WithImages(saver)
	}

	var serveErr chan error
	serveCtx, cancelServe := context.WithCancel(ctx)
	defer cancelServe()
	if cfg.Serve != "" {
		hub := NewHub(log)
		go hub.Run()
		defer hub.Stop()

		rc.OnProgress = hub.Publish
		api := NewAPI(rc, hub, log)
		scraper.WithAPI(api)

		serveErr = make(chan error, 1)
		go func() { serveErr <- api.Serve(serveCtx, cfg.Serve) }()
	}

	if _, err := scraper.Run(ctx); err != nil {
		log.Error("Run failed", zap.Error(err))
		return err
	}

	if serveErr == nil {
		return nil
	}

	log.Info("Run complete, still serving; interrupt to exit", zap.String("addr", cfg.Serve))
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-serveErr:
		return err
	case <-sigCtx.Done():
	}
	cancelServe()
	return <-serveErr
}
