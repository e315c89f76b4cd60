package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"access-insights/internal/aggregators"
	"access-insights/internal/archivers"
	"access-insights/internal/geo"
	internalhttp "access-insights/internal/http"
	"access-insights/internal/ingestors"
	"access-insights/internal/mergers"
	"access-insights/internal/models"
	"access-insights/internal/parsers"
	"access-insights/internal/pipelines"
	"access-insights/internal/shared/configs"
	"access-insights/internal/shared/filestorages"
	"access-insights/internal/shared/loggers"
	"access-insights/internal/sources"
	"access-insights/internal/stores"
	"access-insights/internal/streams"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server

	batchConsumer    streams.BatchConsumer
	tailSource       *sources.TailSource
	geoResolver      *geo.Resolver
	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	var fileOutput *loggers.FileOutput
	if config.Log.File != nil {
		fileOutput = &loggers.FileOutput{
			Path:       config.Log.File.Path,
			MaxSizeMB:  config.Log.File.MaxSizeMB,
			MaxBackups: config.Log.File.MaxBackups,
			MaxAgeDays: config.Log.File.MaxAgeDays,
		}
	}
	appLogger, err := loggers.New(config.Log.Level, fileOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "access-insights").
		Logger()

	// Initialize blob store
	fileStorage, err := filestorages.NewFileStorage(config.FileStorage.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Geo database is mandatory: the location pipeline cannot run without it.
	geoResolver, err := geo.NewResolver(config.Geo.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize geo resolver: %w", err)
	}

	// Initialize stream queue
	batchQueue := streams.NewPartitionedQueue[streams.BatchEvent]()

	// Counter stores, one keyspace per aggregation kind
	installCtx, installCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer installCancel()
	counterStores := make(map[models.AggregationKind]stores.CounterStore, len(models.Kinds()))
	for _, kind := range models.Kinds() {
		store := stores.NewCounterStore(fileStorage, kind)
		if err := store.Install(installCtx); err != nil {
			return nil, fmt.Errorf("failed to install counter store for %s: %w", kind, err)
		}
		counterStores[kind] = store
	}

	// Batch pipelines
	parser := parsers.NewEventParser()
	workers := config.Pipeline.AggregationWorkers
	partitions := config.Pipeline.MergePartitions
	reportLogger := appLogger.With().Str(loggers.FieldComponent, "report").Logger()

	statusPipeline := pipelines.NewPipeline[models.StatusCount](
		models.KindStatus,
		parser,
		aggregators.NewStatusAggregator(workers),
		pipelines.StatusAscending,
		func(batchTime time.Time, rows []models.StatusCount) {
			reportLogger.Info().Time("batch_time", batchTime).Interface("rows", rows).Msg("status counts")
		},
		mergers.NewCounterMergeWriter[models.StatusCount](counterStores[models.KindStatus], partitions),
	)
	volumePipeline := pipelines.NewPipeline[models.LogVolume](
		models.KindVolume,
		parser,
		aggregators.NewVolumeAggregator(workers),
		pipelines.MinuteAscending,
		func(batchTime time.Time, rows []models.LogVolume) {
			reportLogger.Info().Time("batch_time", batchTime).Interface("rows", rows).Msg("per-minute volume")
		},
		mergers.NewCounterMergeWriter[models.LogVolume](counterStores[models.KindVolume], partitions),
	)
	locationPipeline := pipelines.NewPipeline[models.LocationVisit](
		models.KindLocation,
		parser,
		aggregators.NewLocationAggregator(geoResolver, workers),
		pipelines.CountryAscending,
		func(batchTime time.Time, rows []models.LocationVisit) {
			reportLogger.Info().Time("batch_time", batchTime).Interface("rows", rows).Msg("visits by location")
		},
		mergers.NewCounterMergeWriter[models.LocationVisit](counterStores[models.KindLocation], partitions),
	)

	consumerLogger := appLogger.With().Str(loggers.FieldComponent, "consumer").Logger()
	batchConsumer := streams.NewBatchConsumer(
		batchQueue,
		[]pipelines.BatchPipeline{statusPipeline, volumePipeline, locationPipeline},
		consumerLogger,
	)

	// Optional off-site archival
	var archiver archivers.Archiver
	if config.S3Archive.Enabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.S3Archive.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		// SDK retries stay off; the archiver owns retry and backoff.
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.RetryMaxAttempts = 0
		})
		archiver = archivers.NewS3Archiver(
			client,
			config.S3Archive.Bucket,
			config.S3Archive.Prefix,
			config.S3Archive.Retries,
			time.Duration(config.S3Archive.TimeoutSeconds)*time.Second,
		)
	}

	// Initialize intake
	rawBatchStore := stores.NewRawBatchStore(fileStorage)
	batchProducer := streams.NewBatchProducer(batchQueue)
	intakeService := ingestors.NewIntakeService(rawBatchStore, batchProducer, archiver)

	// Optional local log tailing
	var tailSource *sources.TailSource
	if config.TailSource.Enabled {
		tailLogger := appLogger.With().Str(loggers.FieldComponent, "tail_source").Logger()
		tailSource = sources.NewTailSource(
			config.TailSource.Path,
			time.Duration(config.TailSource.FlushIntervalSeconds)*time.Second,
			intakeService,
			tailLogger,
		)
	}

	// Initialize http router
	httpLogger := appLogger.With().Str(loggers.FieldComponent, "http").Logger()
	router := internalhttp.NewRouter(intakeService, httpLogger)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return &App{
		config:        config,
		appLogger:     appLogger,
		server:        server,
		batchConsumer: batchConsumer,
		tailSource:    tailSource,
		geoResolver:   geoResolver,
	}, nil
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting access-insights service on port %d (log_level=%s, file_storage_root_dir=%s)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.FileStorage.RootDir)

	// start background consumers
	app.backgroundCtx, app.backgroundCancel = context.WithCancel(context.Background())
	app.batchConsumer.Start(app.backgroundCtx)

	if app.tailSource != nil {
		if err := app.tailSource.Start(app.backgroundCtx); err != nil {
			return fmt.Errorf("failed to start tail source: %w", err)
		}
	}

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the application.
func (app *App) Shutdown(ctx context.Context) error {
	// 1) Shutdown server
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	// 2) Stop intake sources before the consumers draining their batches
	if app.tailSource != nil {
		app.tailSource.Stop()
		app.appLogger.Info().Msg("Tail source stopped")
	}

	// 3) Cancel and wait for background consumers
	if app.backgroundCancel != nil {
		app.backgroundCancel()
		app.appLogger.Info().Msg("Background consumers cancelled")
	}
	app.batchConsumer.Stop()
	app.appLogger.Info().Msg("Background consumers stopped")

	// 4) Release the geo database
	if err := app.geoResolver.Close(); err != nil {
		app.appLogger.Warn().Err(err).Msg("geo resolver close failed")
	}

	return nil
}
