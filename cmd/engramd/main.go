package main

// @title Engram API
// @version 1.0
// @description Long-term memory lifecycle engine for AI agents: staged working memory, typed consolidation, decay-driven relevance, reinforcement, and pruning
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/engramhq/engram
// @contact.email support@engramhq.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/engramhq/engram/config"
	"github.com/engramhq/engram/pkg/api"
	"github.com/engramhq/engram/pkg/api/events"
	"github.com/engramhq/engram/pkg/api/handlers"
	"github.com/engramhq/engram/pkg/eventbus"
	"github.com/engramhq/engram/pkg/index"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
	"github.com/engramhq/engram/pkg/metrics"
	badgerstore "github.com/engramhq/engram/pkg/store/badger"
	sqlitestore "github.com/engramhq/engram/pkg/store/sqlite"
	"github.com/engramhq/engram/pkg/telemetry/tracing"
	"github.com/engramhq/engram/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	appName    = flag.String("app-name", "", "Override app name")
	serverPort = flag.Int("port", 0, "Override server port")
	logLevel   = flag.String("log-level", "", "Override log level")
	storeType  = flag.String("store", "", "Override store backend (memory, badger, sqlite)")
	debugMode  = flag.Bool("debug", false, "Enable debug mode")
)

func main() {
	flag.Parse()

	// Print help
	if *helpFlag {
		printHelp()
		os.Exit(0)
	}

	// Print version
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	// Build CLI overrides map
	overrides := buildOverrides()

	// Load configuration
	cfg, err := config.Load(*configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	// Initialize logger with configuration
	logCfg := &logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cfg.App.Debug || *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting Engram",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
	)

	log.Debug("Configuration loaded", "config", cfg.String())

	// Create root context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize tracing
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
		if err != nil {
			log.Error("Failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := shutdownTracing(flushCtx); err != nil {
				log.Error("Error shutting down tracing", "error", err)
			}
		}()
		log.Info("Initialized tracing", "exporter", cfg.Tracing.Exporter, "endpoint", cfg.Tracing.Endpoint)
	}

	// Initialize store backend
	var store memory.Store
	switch cfg.Store.Type {
	case "badger":
		badgerStore, err := badgerstore.NewBadgerStore(&badgerstore.Config{
			Path:              cfg.Store.Badger.Path,
			SyncWrites:        cfg.Store.Badger.SyncWrites,
			ValueLogFileSize:  cfg.Store.Badger.ValueLogFileSize,
			NumVersionsToKeep: cfg.Store.Badger.NumVersionsToKeep,
		})
		if err != nil {
			log.Error("Failed to open Badger store", "error", err)
			os.Exit(1)
		}
		store = badgerStore
		log.Info("Initialized Badger store", "path", cfg.Store.Badger.Path)
	case "sqlite":
		sqliteStore, err := sqlitestore.NewSQLiteStore(&sqlitestore.Config{
			Path:        cfg.Store.SQLite.Path,
			BusyTimeout: cfg.Store.SQLite.BusyTimeout,
		})
		if err != nil {
			log.Error("Failed to open SQLite store", "error", err)
			os.Exit(1)
		}
		store = sqliteStore
		log.Info("Initialized SQLite store", "path", cfg.Store.SQLite.Path)
	case "memory":
		store = memory.NewMemStore()
		log.Info("Initialized in-memory store")
	default:
		store = memory.NewMemStore()
		log.Warn("Unknown store type, using in-memory store", "type", cfg.Store.Type)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", "error", err)
		}
	}()

	// Initialize working-memory buffer backend
	var buffer memory.Buffer
	if cfg.Memory.Buffer.Backend == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "address", cfg.Redis.Address, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis client", "error", err)
			}
		}()
		buffer = memory.NewRedisBuffer(redisClient, cfg.Memory.Buffer.KeyPrefix)
		log.Info("Initialized Redis working buffer", "address", cfg.Redis.Address)
	} else {
		buffer = memory.NewLocalBuffer(cfg.Memory.Buffer.Capacity)
		log.Info("Initialized local working buffer", "capacity", cfg.Memory.Buffer.Capacity)
	}
	defer func() {
		if err := buffer.Close(); err != nil {
			log.Error("Error closing working buffer", "error", err)
		}
	}()

	// Rebuild the search index from the store. Fresh deployments index
	// nothing; durable stores recover their index here.
	searcher := index.NewSearcher(cfg.Memory.EmbeddingDimension)
	indexed, err := searcher.Reindex(ctx, store)
	if err != nil {
		log.Error("Failed to rebuild search index", "error", err)
		os.Exit(1)
	}
	if indexed > 0 {
		log.Info("Rebuilt search index", "records", indexed)
	}

	// Initialize metrics manager
	metricsCfg := metrics.Config{
		Enabled:              cfg.Metrics.Enabled,
		Port:                 cfg.Metrics.Port,
		Path:                 cfg.Metrics.Path,
		SweepDurationBuckets: metrics.DefaultConfig().SweepDurationBuckets,
		HTTPDurationBuckets:  metrics.DefaultConfig().HTTPDurationBuckets,
	}
	metricsManager := metrics.NewManager(metricsCfg)

	// Start metrics server if enabled
	if metricsManager.Enabled() {
		go func() {
			log.Info("Starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := metricsManager.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server error", "error", err)
			}
		}()
	}

	// Lifecycle events fan out twice: the broadcaster feeds websocket
	// subscribers, the bus sink feeds the distributed event bus.
	broadcaster := events.NewBroadcaster()

	nodeID, err := os.Hostname()
	if err != nil || nodeID == "" {
		nodeID = cfg.App.Name
	}
	bus := eventbus.NewLocalBus()
	publisher, err := eventbus.NewPublisher(nodeID, bus, eventbus.DefaultRetryConfig(), metricsManager)
	if err != nil {
		log.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	busSink := eventbus.NewSink(publisher, 0)

	// Tail the bus into the event log. A NATS transport replaces LocalBus
	// for clustered deployments; the consumer side stays the same.
	schemaRouter := eventbus.NewSchemaRouter()
	if err := eventbus.RegisterLifecycleSchemas(schemaRouter); err != nil {
		log.Error("Failed to register lifecycle schemas", "error", err)
		os.Exit(1)
	}
	busTail, err := bus.Subscribe(eventbus.SubjectPrefix+".>", 256)
	if err != nil {
		log.Error("Failed to subscribe to event bus", "error", err)
		os.Exit(1)
	}
	consumer := eventbus.NewLifecycleConsumer(schemaRouter)
	go func() {
		for msg := range busTail.C() {
			envelope, _, redelivered, err := consumer.Consume(msg.Payload)
			if err != nil {
				log.Warn("Dropping malformed bus event", "subject", msg.Subject, "error", err)
				continue
			}
			if redelivered {
				continue
			}
			log.Debug("Lifecycle event",
				"subject", msg.Subject,
				"event_type", envelope.EventType,
				"memory_id", envelope.MemoryID,
				"sequence", envelope.Sequence,
			)
		}
	}()

	// Initialize and start the memory lifecycle engine.
	eng := memory.New(&cfg.Memory, store, buffer,
		memory.WithLogger(log),
		memory.WithMetrics(metricsManager),
		memory.WithSearcher(searcher),
		memory.WithIndexer(searcher),
		memory.WithEventSink(memory.MultiSink{broadcaster, busSink}),
	)
	if err := eng.Start(ctx); err != nil {
		log.Error("Failed to start engine", "error", err)
		os.Exit(1)
	}

	// Hot-reload log level and sweep tuning on config file edits. Other
	// settings still require a restart.
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, config.NewLoader())
		if err != nil {
			log.Error("Failed to watch config file", "path", *configPath, "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				log.Error("Error stopping config watcher", "error", err)
			}
		}()

		var hotMu sync.Mutex
		lastHot := config.ExtractHotReloadable(cfg)
		watcher.OnChange(func(next *config.Config) {
			hotMu.Lock()
			defer hotMu.Unlock()

			hot := config.ExtractHotReloadable(next)
			if !hot.Changed(lastHot) {
				return
			}
			if hot.LogLevel != lastHot.LogLevel {
				level := logger.ParseLevel(hot.LogLevel)
				if next.App.Debug || *debugMode {
					level = logger.DebugLevel
				}
				logger.SetLevel(level)
				log.Info("Reloaded log level", "level", hot.LogLevel)
			}
			if hot.LogFormat != lastHot.LogFormat {
				log.Warn("Log format change requires a restart", "format", hot.LogFormat)
			}
			if hot.PruneInterval != lastHot.PruneInterval ||
				hot.ArchiveThreshold != lastHot.ArchiveThreshold ||
				hot.InvalidateThreshold != lastHot.InvalidateThreshold {
				eng.ApplyPruneConfig(next.Memory.Prune)
				log.Info("Reloaded sweep settings",
					"interval", hot.PruneInterval,
					"archive_threshold", hot.ArchiveThreshold,
					"invalidate_threshold", hot.InvalidateThreshold,
				)
			}
			lastHot = hot
		})

		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Config watcher stopped", "error", err)
			}
		}()
		log.Info("Watching config file", "path", *configPath)
	}

	// Initialize HTTP server with handlers
	workingHandler := handlers.NewWorkingHandler(eng, log)
	memoryHandler := handlers.NewMemoryHandler(eng, log)
	searchHandler := handlers.NewSearchHandler(eng, log)
	statsHandler := handlers.NewStatsHandler(eng, log)
	healthHandler := handlers.NewHealthHandler(eng)

	wsConfig := handlers.WebSocketConfig{}
	if cfg.Server.CORS.Enabled {
		wsConfig.AllowedOrigins = cfg.Server.CORS.AllowedOrigins
	}
	wsHandler := handlers.NewWebSocketHandler(log, wsConfig)

	// Pump committed lifecycle events to websocket subscribers.
	wsEvents := broadcaster.Subscribe(256)
	go func() {
		for event := range wsEvents {
			if err := wsHandler.Broadcast(handlers.EventMessage{
				Type:      event.Type,
				Timestamp: event.Timestamp,
				Payload:   event.Payload,
			}); err != nil {
				log.Debug("Websocket broadcast failed", "error", err)
			}
		}
	}()

	apiHandlers := &api.Handlers{
		Working:        workingHandler,
		Memory:         memoryHandler,
		Search:         searchHandler,
		Stats:          statsHandler,
		Health:         healthHandler,
		WebSocket:      wsHandler,
		TracingEnabled: cfg.Tracing.Enabled,
	}
	if metricsManager.Enabled() {
		apiHandlers.Metrics = metricsManager
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	// Start HTTP server in a separate goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	log.Info("Engram is running",
		"http_port", cfg.Server.Port,
		"metrics_port", cfg.Metrics.Port,
		"store", cfg.Store.Type,
		"buffer", cfg.Memory.Buffer.Backend,
	)
	log.Info("Press Ctrl+C to stop")

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig)
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	// Graceful shutdown
	shutdownTimeout := cfg.Server.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server first
	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	// Stop the engine gracefully.
	log.Info("Stopping memory engine")
	if err := eng.Stop(shutdownCtx); err != nil {
		log.Error("Error during engine shutdown", "error", err)
	}

	// Drain queued bus events, then stop the fan-out paths.
	if err := busSink.Close(); err != nil {
		log.Error("Error closing event-bus sink", "error", err)
	}
	if dropped := busSink.Dropped(); dropped > 0 {
		log.Warn("Event-bus sink dropped events", "count", dropped)
	}
	if err := busTail.Close(); err != nil {
		log.Error("Error closing event-bus tail", "error", err)
	}
	broadcaster.Close()
	wsHandler.Close()

	log.Info("Engram stopped gracefully")
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *appName != "" {
		overrides["app.name"] = *appName
	}
	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	if *storeType != "" {
		overrides["store.type"] = *storeType
	}
	if *debugMode {
		overrides["app.debug"] = true
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Engram - Agent Memory Lifecycle Engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Engram - Long-term memory lifecycle engine for AI agents\n\n")
	fmt.Printf("Usage: engramd [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  engramd                                   # Run with default config\n")
	fmt.Printf("  engramd -config config.yaml               # Use specific config file\n")
	fmt.Printf("  engramd -store badger                     # Persist memories with Badger\n")
	fmt.Printf("  engramd -port 9090 -log-level debug       # Override specific options\n")
	fmt.Printf("  engramd -version                          # Print version info\n")
}
