package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ilansync/internal/common"
	"github.com/ternarybob/ilansync/internal/fetcher"
	"github.com/ternarybob/ilansync/internal/interfaces"
	"github.com/ternarybob/ilansync/internal/services/embeddings"
	"github.com/ternarybob/ilansync/internal/services/scheduler"
	syncsvc "github.com/ternarybob/ilansync/internal/services/sync"
	"github.com/ternarybob/ilansync/internal/sources/arabam"
	"github.com/ternarybob/ilansync/internal/sources/emlakjet"
	"github.com/ternarybob/ilansync/internal/storage/badger"
)

var (
	configFile   = flag.String("config", "", "Configuration file path")
	configFileC  = flag.String("c", "", "Configuration file path (shorthand)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
	onlySource   = flag.String("source", "", "Restrict to one source (emlakjet or arabam)")
	runOnce      = flag.Bool("once", false, "Run one sync pass per source and exit")
)

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("ilansync version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file -> env)
	// 2. Initialize logger
	// 3. Open storage, build sources and drivers
	configPath := *configFile
	if *configFileC != "" {
		configPath = *configFileC
	}
	if configPath == "" {
		// Auto-discover config file in the working directory
		if _, err := os.Stat("ilansync.toml"); err == nil {
			configPath = "ilansync.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Str("path", configPath).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("config_file", configPath).
		Str("environment", config.Environment).
		Str("data_path", config.Storage.Badger.Path).
		Bool("emlakjet_enabled", config.Sources.Emlakjet.Enabled).
		Bool("arabam_enabled", config.Sources.Arabam.Enabled).
		Bool("embeddings_enabled", config.Embeddings.Enabled).
		Msg("Application configuration loaded")

	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open database")
		os.Exit(1)
	}

	store := badger.NewListingStorage(db, logger)
	client := fetcher.NewClient(config.Fetcher, logger)

	var embedder *embeddings.Service
	if config.Embeddings.Enabled {
		provider, err := embeddings.NewGeminiProvider(context.Background(), config.Embeddings, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize embedding provider")
			os.Exit(1)
		}
		embedder = embeddings.NewService(provider, config.Embeddings.BatchSize, logger)
	}

	type registeredSource struct {
		source   interfaces.ListingSource
		schedule string
	}

	var sources []registeredSource
	if config.Sources.Emlakjet.Enabled && sourceSelected(emlakjet.SourceName) {
		sources = append(sources, registeredSource{
			source:   emlakjet.New(client, config.Sources.Emlakjet, config.Sync, logger),
			schedule: config.Sources.Emlakjet.Schedule,
		})
	}
	if config.Sources.Arabam.Enabled && sourceSelected(arabam.SourceName) {
		sources = append(sources, registeredSource{
			source:   arabam.New(client, config.Sources.Arabam, config.Sync, logger),
			schedule: config.Sources.Arabam.Schedule,
		})
	}
	if len(sources) == 0 {
		logger.Fatal().Str("source_flag", *onlySource).Msg("No sources enabled, nothing to do")
		os.Exit(1)
	}

	if *runOnce {
		ctx, cancel := signalContext(logger)
		defer cancel()

		exitCode := 0
		for _, registered := range sources {
			driver := syncsvc.NewDriver(registered.source, store, embedder, config.Sync, logger)
			if _, err := driver.Run(ctx); err != nil {
				logger.Error().Str("source", registered.source.Name()).Err(err).Msg("Sync run failed")
				exitCode = 1
			}
		}
		if err := db.RunGC(); err != nil {
			logger.Warn().Err(err).Msg("Value log GC failed")
		}
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Database close failed")
		}
		os.Exit(exitCode)
	}

	sched := scheduler.NewService(logger)
	for _, registered := range sources {
		driver := syncsvc.NewDriver(registered.source, store, embedder, config.Sync, logger)
		name := registered.source.Name() + "-sync"
		description := fmt.Sprintf("Full scrape and reconcile pass for %s", registered.source.Name())
		err := sched.RegisterJob(name, registered.schedule, description, func() error {
			_, err := driver.Run(context.Background())
			if gcErr := db.RunGC(); gcErr != nil {
				logger.Warn().Err(gcErr).Msg("Value log GC failed")
			}
			return err
		})
		if err != nil {
			logger.Fatal().Str("job", name).Err(err).Msg("Failed to register sync job")
			os.Exit(1)
		}
	}

	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	logger.Info().Msg("Scheduler running - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received, shutting down")

	if err := sched.Stop(); err != nil {
		logger.Error().Err(err).Msg("Scheduler shutdown failed")
	}
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Database close failed")
	}

	logger.Info().Msg("Shutdown complete")
}

// sourceSelected applies the -source flag filter
func sourceSelected(name string) bool {
	return *onlySource == "" || *onlySource == name
}

// signalContext returns a context cancelled on SIGINT/SIGTERM so a -once run
// can stop between partitions.
func signalContext(logger arbor.ILogger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			logger.Warn().Msg("Interrupt received, cancelling sync run")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
