package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Conversion
	Workers      int    `yaml:"workers"`
	Force        bool   `yaml:"force"`
	ContentClass string `yaml:"content_class"`

	// Resources
	SkipResources bool          `yaml:"skip_resources"`
	SassBinary    string        `yaml:"sass_binary"`
	SassTimeout   time.Duration `yaml:"sass_timeout"`

	// Watch mode
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Logging: "text" or "json"
	LogFormat string `yaml:"log_format"`

	// Build service
	Port         string        `yaml:"port"`
	APIKey       string        `yaml:"api_key"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	BuildWorkers int           `yaml:"build_workers"`
	JobTTL       time.Duration `yaml:"job_ttl"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Workers:       runtime.NumCPU(),
		ContentClass:  "doxygen-content",
		SassBinary:    "sass",
		SassTimeout:   2 * time.Minute,
		WatchDebounce: 500 * time.Millisecond,
		LogFormat:     "text",
		Port:          "8090",
		MaxQueueSize:  100,
		BuildWorkers:  1,
		JobTTL:        1 * time.Hour,
	}
}

// Load layers configuration: defaults, then the YAML file at path (if
// path is not empty), then a .env file, then DOXYRST_* environment
// variables. CLI flags are applied by the caller.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	envFile := envOr("DOXYRST_ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg.Workers = envInt("DOXYRST_WORKERS", cfg.Workers)
	cfg.Force = envBool("DOXYRST_FORCE", cfg.Force)
	cfg.ContentClass = envOr("DOXYRST_CONTENT_CLASS", cfg.ContentClass)
	cfg.SkipResources = envBool("DOXYRST_SKIP_RESOURCES", cfg.SkipResources)
	cfg.SassBinary = envOr("DOXYRST_SASS_BINARY", cfg.SassBinary)
	cfg.SassTimeout = envDuration("DOXYRST_SASS_TIMEOUT", cfg.SassTimeout)
	cfg.WatchDebounce = envDuration("DOXYRST_WATCH_DEBOUNCE", cfg.WatchDebounce)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("DOXYRST_API_KEY", cfg.APIKey)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.BuildWorkers = envInt("DOXYRST_BUILD_WORKERS", cfg.BuildWorkers)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	d := Defaults()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ContentClass == "" {
		c.ContentClass = d.ContentClass
	}
	if c.SassBinary == "" {
		c.SassBinary = d.SassBinary
	}
	if c.SassTimeout <= 0 {
		c.SassTimeout = d.SassTimeout
	}
	if c.WatchDebounce <= 0 {
		c.WatchDebounce = d.WatchDebounce
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.BuildWorkers <= 0 {
		c.BuildWorkers = d.BuildWorkers
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}

// ValidateServe checks the settings the build service needs on top of
// Validate.
func (c Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DOXYRST_API_KEY is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
