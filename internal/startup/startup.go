package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"video-ingest/internal/database"
	"video-ingest/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo is served by GET /api/version.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	UploadDir        string
	DatabaseDir      string
	Port             string
	MetricsPort      string
	MetricsEnabled   bool
	MaxUploadSize    int64
	ProbeTimeout     time.Duration
	TranscodeTimeout time.Duration
	TranscodeWorkers int
	PostersEnabled   bool
	CORSOrigins      []string
	FFprobePaths     []string
	FFmpegPaths      []string
	RequireTools     bool
	LogStaticFiles   bool
	LogHealthChecks  bool

	DatabasePath string

	// Resolved once at startup
	FFprobe Tool
	FFmpeg  Tool
}

// LoadConfig loads and validates configuration. Sources, lowest precedence
// first: built-in defaults, the YAML file named by CONFIG_FILE, then the
// environment (including .env, which never overrides variables already set).
// Storage directories are made absolute, created and checked for write access.
func LoadConfig() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}
	logging.SetDefault(logging.FromEnv())
	logging.Info("video-ingest %s (commit %s, built %s, %s %s/%s, GOMAXPROCS=%d)",
		Version, Commit, BuildTime, GoVersion, runtime.GOOS, runtime.GOARCH, runtime.GOMAXPROCS(0))

	configFile := getEnv("CONFIG_FILE", "")
	fc, err := LoadFileConfig(configFile)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		logging.Info("Loaded config file %s", configFile)
	}
	config := resolveConfig(fc)

	if config.UploadDir, err = prepareDir(config.UploadDir); err != nil {
		return nil, fmt.Errorf("upload directory: %w", err)
	}
	if config.DatabaseDir, err = prepareDir(config.DatabaseDir); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	config.DatabasePath = filepath.Join(config.DatabaseDir, database.FileName)

	if err := resolveTools(config); err != nil {
		return nil, err
	}
	logConfig(config)
	return config, nil
}

// resolveConfig layers the environment over the file config and defaults.
func resolveConfig(fc *FileConfig) *Config {
	maxUpload := DefaultMaxUploadSize
	if fc.MaxUploadSize > 0 {
		maxUpload = fc.MaxUploadSize
	}

	return &Config{
		UploadDir:        getEnv("UPLOAD_DIR", orString(fc.UploadDir, "uploads")),
		DatabaseDir:      getEnv("DATABASE_DIR", orString(fc.DatabaseDir, "data")),
		Port:             getEnv("PORT", orString(fc.Port, "5000")),
		MetricsPort:      getEnv("METRICS_PORT", orString(fc.MetricsPort, "9090")),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", orBool(fc.MetricsEnabled, true)),
		MaxUploadSize:    getEnvInt64("MAX_UPLOAD_SIZE", maxUpload),
		ProbeTimeout:     getEnvDuration("PROBE_TIMEOUT", parseDuration("probe_timeout", fc.ProbeTimeout, 30*time.Second)),
		TranscodeTimeout: getEnvDuration("TRANSCODE_TIMEOUT", parseDuration("transcode_timeout", fc.TranscodeTimeout, 30*time.Minute)),
		TranscodeWorkers: getEnvInt("TRANSCODE_WORKERS", fc.TranscodeWorkers),
		PostersEnabled:   getEnvBool("POSTERS_ENABLED", orBool(fc.PostersEnabled, true)),
		CORSOrigins:      getEnvList("CORS_ORIGINS", orList(fc.CORSOrigins, []string{"*"})),
		FFprobePaths:     getEnvList("FFPROBE_PATHS", orList(fc.Tools.FFprobe, []string{"ffprobe"})),
		FFmpegPaths:      getEnvList("FFMPEG_PATHS", orList(fc.Tools.FFmpeg, []string{"ffmpeg"})),
		RequireTools:     getEnvBool("REQUIRE_TOOLS", orBool(fc.RequireTools, false)),
		LogStaticFiles:   getEnvBool("LOG_STATIC_FILES", orBool(fc.Log.StaticFiles, false)),
		LogHealthChecks:  getEnvBool("LOG_HEALTH_CHECKS", orBool(fc.Log.HealthChecks, true)),
	}
}

func logConfig(c *Config) {
	workers := "auto"
	if c.TranscodeWorkers > 0 {
		workers = fmt.Sprint(c.TranscodeWorkers)
	}
	logging.Info("Storage: uploads=%s database=%s", c.UploadDir, c.DatabasePath)
	logging.Info("HTTP: port=%s metrics=%v (port %s) cors=%s max_upload=%s",
		c.Port, c.MetricsEnabled, c.MetricsPort, strings.Join(c.CORSOrigins, ","), formatBytes(c.MaxUploadSize))
	logging.Info("Media: probe_timeout=%v transcode_timeout=%v workers=%s posters=%v",
		c.ProbeTimeout, c.TranscodeTimeout, workers, c.PostersEnabled)
	logging.Debug("Access log: downloads=%v health_checks=%v level=%s",
		c.LogStaticFiles, c.LogHealthChecks, logging.GetLevel())
}

// prepareDir returns the absolute form of dir after creating it and
// confirming the process can write there.
func prepareDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(abs, ".write-test-*")
	if err != nil {
		return "", fmt.Errorf("not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("Failed to remove %s: %v", name, err)
	}
	return abs, nil
}

// formatBytes renders a byte count with binary units.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
