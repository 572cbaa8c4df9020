package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/petermazzocco/go-music-api/internal/auth"
	"github.com/petermazzocco/go-music-api/internal/config"
	"github.com/petermazzocco/go-music-api/internal/filestore"
	"github.com/petermazzocco/go-music-api/internal/handlers"
	"github.com/petermazzocco/go-music-api/internal/logging"
	"github.com/petermazzocco/go-music-api/internal/store"
)

func main() {
	app := &cli.Command{
		Name:  "music-api",
		Usage: "Music catalog REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database tables and exit",
				Action: migrate,
			},
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Action: initConfig,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal("application error", "err", err)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	db, err := store.Open(cfg.Database, logging.WithComponent(logger, "store"))
	if err != nil {
		return err
	}
	defer db.Close()

	// Auto migrate models
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	files, err := filestore.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	gate := auth.NewGate(cfg.Auth.Secret, cfg.Auth.Enabled)
	if !gate.Enabled() {
		logger.Warn("authentication is disabled, every route is public")
	}
	if cfg.Catalog.AtomicCascade {
		logger.Info("cascading deletes run in a single transaction")
	}

	h := handlers.New(db, files, auth.NewIssuer(cfg.Auth.Secret), cfg, logging.WithComponent(logger, "http"))
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(h, gate),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting API server", "addr", srv.Addr, "database", cfg.Database.Driver, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database migrated", "driver", cfg.Database.Driver)
	return nil
}

func initConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	log.Info("wrote example configuration", "path", path)
	return nil
}
