package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-ingest/internal/assets"
	"video-ingest/internal/catalog"
	"video-ingest/internal/database"
	"video-ingest/internal/filesystem"
	"video-ingest/internal/handlers"
	"video-ingest/internal/ingest"
	"video-ingest/internal/logging"
	"video-ingest/internal/media"
	"video-ingest/internal/memory"
	"video-ingest/internal/metrics"
	"video-ingest/internal/middleware"
	"video-ingest/internal/prober"
	"video-ingest/internal/startup"
	"video-ingest/internal/transcoder"
	"video-ingest/internal/watcher"
	"video-ingest/internal/workers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const statsInterval = time.Minute

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	log := logging.Default()

	// Leave room in the container for ffmpeg children
	memory.ConfigureFromEnv()

	// Metrics and filesystem instrumentation
	tierNames := make([]string, 0, len(assets.Tiers))
	for _, t := range assets.Tiers {
		tierNames = append(tierNames, t.Name)
	}
	metrics.InitializeMetrics(tierNames)
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	metrics.SetToolAvailable("ffprobe", config.FFprobe.Available())
	metrics.SetToolAvailable("ffmpeg", config.FFmpeg.Available())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(
		filesystem.Volume{Name: "uploads", Path: config.UploadDir},
		filesystem.Volume{Name: "database", Path: config.DatabaseDir},
	))
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	// Initialize catalog
	cat, err := catalog.New(config.UploadDir, log)
	if err != nil {
		startup.LogFatal("Failed to open upload directory: %v", err)
	}
	pruned, err := cat.Prune(0)
	if err != nil {
		logging.Warn("Catalog cleanup incomplete: %v", err)
	}
	startup.LogCatalogInit(cat.Root(), pruned)

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath, log)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize media pipeline
	probe := prober.New(config.FFprobe.Path, config.ProbeTimeout, log)
	worker := transcoder.New(config.FFmpeg.Path, config.TranscodeTimeout, log)
	transcodeWorkers := workers.ForTranscode(config.TranscodeWorkers)
	orchestrator := transcoder.NewOrchestrator(worker, transcodeWorkers, log)
	startup.LogTranscoderInit(worker.Available(), orchestrator.Workers(), tierNames)

	var posters ingest.PosterGenerator
	if gen := media.NewPosterGenerator(config.FFmpeg.Path, config.PostersEnabled, log); gen.IsEnabled() {
		posters = gen
	}

	svc := ingest.New(ingest.Config{
		Catalog:    cat,
		Prober:     probe,
		Transcoder: orchestrator,
		Posters:    posters,
		Index:      db,
		Log:        log,
	})

	// Initialize handlers
	h := handlers.New(svc, db, config, log)

	// Reconcile the index with storage in the background; readiness
	// reports 503 until it finishes.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		reconcileStart := time.Now()
		if err := svc.Reconcile(ctx); err != nil {
			logging.Error("Startup reconciliation failed: %v", err)
		} else if list, err := svc.List(ctx); err == nil {
			startup.LogReconcileComplete(len(list), time.Since(reconcileStart))
		}
		h.SetReady()
	}()

	// Watch for asset directories removed out of band
	fsWatcher, err := watcher.New(cat.Root(), svc.Forget, log)
	if err != nil {
		logging.Warn("Storage watcher disabled: %v", err)
	} else {
		fsWatcher.Run(ctx)
	}

	// Periodic catalog gauges
	collector := metrics.NewCollector(cat, statsInterval, log)
	collector.Start()

	// Setup router
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogRoutes(router)

	// Apply middleware
	handler := middleware.Metrics(router)(router)
	handler = middleware.AccessLog(middleware.AccessLogOptions{
		Downloads:    config.LogStaticFiles,
		HealthChecks: config.LogHealthChecks,
	}, log)(handler)
	handler = cors.New(cors.Options{
		AllowedOrigins: config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Range"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Accept-Ranges"},
	}).Handler(handler)

	// Create server
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      0, // uploads block until every tier is encoded
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	done := make(chan struct{})
	go func() {
		handleShutdown(srv, metricsSrv, worker, fsWatcher, collector, cancel)
		db.Close()
		close(done)
	}()

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

func handleShutdown(srv, metricsSrv *http.Server, worker *transcoder.Worker, fsWatcher *watcher.Watcher, collector *metrics.Collector, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelTimeout()

	startup.LogShutdownStep("Stopping background tasks")
	cancel()
	collector.Stop()
	if fsWatcher != nil {
		if err := fsWatcher.Close(); err != nil {
			logging.Warn("Watcher close error: %v", err)
		}
	}
	startup.LogShutdownStepComplete("Background tasks stopped")

	startup.LogShutdownStep("Stopping transcodes")
	worker.Cleanup()
	startup.LogShutdownStepComplete("Transcoder cleanup complete")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}

	startup.LogShutdownComplete()
}
