package startup

import (
	"strings"
	"time"

	"video-ingest/internal/logging"

	"github.com/gorilla/mux"
)

// RouteInfo is one method/path pair registered on the router.
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// GetRoutes lists every method and path template registered on router.
// Routes without a method restriction are reported as "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo
	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		if route.GetHandler() == nil {
			return nil
		}
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, m := range methods {
			routes = append(routes, RouteInfo{Method: m, Path: path, Name: route.GetName()})
		}
		return nil
	})
	return routes, err
}

// LogRoutes lists the registered routes at debug level.
func LogRoutes(router *mux.Router) {
	if !logging.IsDebugEnabled() {
		return
	}
	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("Failed to walk routes: %v", err)
	}
	for _, r := range routes {
		logging.Debug("Route %-6s %s", r.Method, r.Path)
	}
}

func LogDatabaseInit(duration time.Duration) {
	logging.Info("Database ready in %v", duration)
}

// LogCatalogInit reports the catalog root and how many leftover staging or
// tombstone directories the startup sweep removed.
func LogCatalogInit(root string, pruned int) {
	if pruned > 0 {
		logging.Info("Catalog ready at %s (removed %d leftover directories)", root, pruned)
		return
	}
	logging.Info("Catalog ready at %s", root)
}

func LogTranscoderInit(available bool, workers int, tiers []string) {
	if !available {
		logging.Warn("Transcoding disabled: ffmpeg not available, renditions will be marked failed")
		return
	}
	logging.Info("Transcoder ready: tiers=%s workers=%d", strings.Join(tiers, ","), workers)
}

func LogReconcileComplete(assets int, duration time.Duration) {
	logging.Info("Reconciled %d assets in %v", assets, duration)
}

// ServerConfig describes the listeners reported once the server starts.
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

func LogServerStarted(config ServerConfig) {
	if config.MetricsEnabled {
		logging.Info("Listening on :%s (metrics on :%s/metrics), started in %v",
			config.Port, config.MetricsPort, config.StartupDuration)
		return
	}
	logging.Info("Listening on :%s, started in %v", config.Port, config.StartupDuration)
}

func LogShutdownInitiated(signal string) {
	logging.Info("Received %s, shutting down", signal)
}

func LogShutdownStep(step string) {
	logging.Debug("%s...", step)
}

func LogShutdownStepComplete(step string) {
	logging.Info("%s", step)
}

func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}

// LogFatal logs and exits with status 1.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
