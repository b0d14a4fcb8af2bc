package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/pos-atlas/pkg/server"
	"github.com/de-tools/pos-atlas/pkg/services/analytics"
	"github.com/de-tools/pos-atlas/pkg/services/config"
	"github.com/de-tools/pos-atlas/pkg/services/dashboard"
	"github.com/de-tools/pos-atlas/pkg/services/session"
	"github.com/de-tools/pos-atlas/pkg/store/duckdb"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for POS Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (defaults and POS_ATLAS_* variables apply without it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := zerolog.New(os.Stdout).Level(cfg.LogLevel()).With().Timestamp().Logger()

	kind, err := analytics.ParseEngineKind(cfg.Analytics.Engine)
	if err != nil {
		return err
	}
	labels, err := cfg.LabelSet()
	if err != nil {
		return err
	}

	engine, closeEngine, err := analytics.NewEngine(kind, duckdb.Settings{
		DbPath:  cfg.Analytics.DuckDBPath,
		Threads: cfg.Analytics.DuckDBThreads,
	})
	if err != nil {
		return err
	}

	svc := dashboard.NewService(engine, dashboard.Options{
		Labels:          labels,
		Comma:           cfg.Comma(),
		PreviewRows:     cfg.Analytics.PreviewRows,
		TopProducts:     cfg.Analytics.TopProducts,
		TopCategories:   cfg.Analytics.TopCategories,
		TopCooccurrence: cfg.Analytics.TopCooccurrence,
	})
	registry := session.NewRegistry(engine, session.Options{
		TTL:         cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
	})

	janitorCtx, stopJanitor := context.WithCancel(logger.WithContext(cmd.Context()))
	janitor := session.NewJanitor(registry, cfg.Session.SweepInterval)
	go janitor.Run(janitorCtx)

	logger.Info().
		Str("engine", string(kind)).
		Str("locale", cfg.Labels.Locale).
		Dur("session_ttl", cfg.Session.TTL).
		Int("max_sessions", cfg.Session.MaxSessions).
		Msg("configuration loaded")

	api := server.NewWebAPI(server.Config{
		Addr:            cfg.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Dependencies: server.Dependencies{
			Dashboard: svc,
			Sessions:  registry,
			Logger:    logger,
		},
		OnShutdown: func(shutdownCtx context.Context) {
			stopJanitor()
			<-janitor.Done()
			registry.Close(shutdownCtx)
			if err := closeEngine(); err != nil {
				logger.Error().Err(err).Msg("failed to close analytics engine")
			}
		},
	})

	logger.Info().Msgf("starting server on %s", cfg.Addr())
	err = api.Start()
	stopJanitor()
	return err
}
