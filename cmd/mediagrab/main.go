package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/mediagrab/internal/api"
	"github.com/iconidentify/mediagrab/internal/api/handler"
	"github.com/iconidentify/mediagrab/internal/bot"
	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/logging"
	"github.com/iconidentify/mediagrab/internal/service"
	"github.com/iconidentify/mediagrab/internal/worker"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mediagrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	logger.Info("starting mediagrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Initialize adapters
	svcs, err := buildServices(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	botAPI, err := bot.Connect(cfg.Telegram, logger)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}

	messenger := bot.NewMessenger(botAPI, svcs.prober, logger.With("component", "messenger"))
	deliverySvc := service.NewDeliveryService(
		messenger,
		svcs.extractor,
		svcs.uploader,
		svcs.deliveries,
		cfg.Storage,
		cfg.Delivery,
		logger.With("component", "delivery"),
	)
	updateHandler := bot.NewHandler(deliverySvc, messenger, logger.With("component", "bot"))

	// Cancelled on SIGINT/SIGTERM; in-flight requests see it through their context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start update dispatcher
	pool := worker.NewPool(ctx, worker.Config{Workers: cfg.Worker.Count}, updateHandler, logger)
	pool.Start(bot.Updates(botAPI, cfg.Telegram.PollTimeout))

	// Setup admin HTTP server
	var srv *http.Server
	if cfg.Server.Enabled {
		router := api.NewRouter(
			handler.NewHealthHandler(svcs.deliveries, pool, cfg.Storage.DownloadPath),
			handler.NewDeliveryHandler(svcs.deliveries, logger),
			cfg.Server.APIKey,
			logger,
		)
		srv = &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		go func() {
			logger.Info("starting HTTP server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		}()
	}

	logger.Info("bot is running", "username", botAPI.Self.UserName, "workers", cfg.Worker.Count)

	// Wait for shutdown signal
	<-ctx.Done()
	stop()

	logger.Info("shutting down")

	// Stop polling for new updates
	botAPI.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}

	// Stop workers; deliveries still remove their files and report
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
