package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vertextoedge/datafetch/internal/adapter/httpsource"
	"github.com/vertextoedge/datafetch/internal/adapter/sqlite"
	"github.com/vertextoedge/datafetch/internal/config"
	"github.com/vertextoedge/datafetch/internal/logger"
	"github.com/vertextoedge/datafetch/pkg/fetch"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	source := flag.String("source", "", "Dataset identifier (e.g. owner/name)")
	dest := flag.String("dest", "", "Destination base directory")
	keepCache := flag.Bool("keep-cache", false, "Keep the download cache after moving")
	flag.Parse()

	// Load configuration; flags override file values
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *source != "" {
		cfg.Source.ID = *source
	}
	if *dest != "" {
		cfg.Fetch.DestBaseDir = *dest
	}
	if *keepCache {
		cfg.Fetch.KeepCache = true
	}

	if cfg.Source.ID == "" {
		fmt.Fprintln(os.Stderr, "A dataset source is required (-source or source.id in config)")
		os.Exit(1)
	}

	// Initialize logger
	if cfg.Logging.Enabled {
		err = logger.InitWithFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Dir, cfg.Logging.File)
	} else {
		err = logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting datafetch",
		zap.String("version", version),
		zap.String("source", cfg.Source.ID),
	)

	// Open fetch history store when enabled
	var history fetch.HistoryRecorder
	if cfg.History.Enabled {
		store, err := sqlite.Open(cfg.HistoryPath())
		if err != nil {
			zapLogger.Fatal("failed to open history database",
				zap.Error(err), zap.String("path", cfg.HistoryPath()))
		}
		defer store.Close()
		history = store
	}

	// Create the HTTP retriever
	retriever := httpsource.New(cfg.Source.BaseURL, cfg.Source.CacheDir, cfg.Source.GetTimeout())

	fetcher, err := fetch.New(retriever, fetch.Config{
		Source:      cfg.Source.ID,
		DestBaseDir: cfg.Fetch.DestBaseDir,
		Logger:      zapLogger,
		History:     history,
	})
	if err != nil {
		zapLogger.Fatal("failed to create fetcher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finalPath, err := fetcher.Fetch(ctx, fetch.FetchOptions{KeepCache: cfg.Fetch.KeepCache})
	if err != nil {
		zapLogger.Error("fetch failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	zapLogger.Info("dataset fetched", zap.String("path", finalPath))
	fmt.Println(finalPath)
}
