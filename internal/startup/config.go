package startup

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"video-ingest/internal/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadSize caps a single multipart upload (500 MiB).
const DefaultMaxUploadSize int64 = 500 << 20

// FileConfig mirrors the optional YAML file named by CONFIG_FILE. Every field
// is optional; environment variables take precedence over anything set here.
type FileConfig struct {
	UploadDir        string   `yaml:"upload_dir"`
	DatabaseDir      string   `yaml:"database_dir"`
	Port             string   `yaml:"port"`
	MetricsPort      string   `yaml:"metrics_port"`
	MetricsEnabled   *bool    `yaml:"metrics_enabled"`
	MaxUploadSize    int64    `yaml:"max_upload_size"`
	ProbeTimeout     string   `yaml:"probe_timeout"`
	TranscodeTimeout string   `yaml:"transcode_timeout"`
	TranscodeWorkers int      `yaml:"transcode_workers"`
	PostersEnabled   *bool    `yaml:"posters_enabled"`
	CORSOrigins      []string `yaml:"cors_origins"`
	RequireTools     *bool    `yaml:"require_tools"`

	Tools struct {
		FFprobe []string `yaml:"ffprobe"`
		FFmpeg  []string `yaml:"ffmpeg"`
	} `yaml:"tools"`

	Log struct {
		StaticFiles  *bool `yaml:"static_files"`
		HealthChecks *bool `yaml:"health_checks"`
	} `yaml:"log"`
}

// loadEnvFile loads .env from the working directory if present. Variables
// already set in the process environment are not overwritten.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadFileConfig reads a YAML config file. An empty path yields an empty FileConfig.
func LoadFileConfig(path string) (*FileConfig, error) {
	fc := &FileConfig{}
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return fc, nil
}

func orString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orBool(value *bool, fallback bool) bool {
	if value != nil {
		return *value
	}
	return fallback
}

func orList(value, fallback []string) []string {
	if len(value) > 0 {
		return value
	}
	return fallback
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid size value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("Invalid duration for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func parseDuration(name, value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logging.Warn("  Invalid %s in config file: %q, using default: %v", name, value, defaultValue)
		return defaultValue
	}
	return parsed
}
