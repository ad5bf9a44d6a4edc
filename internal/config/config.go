package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	DEXScreener DEXScreenerConfig `yaml:"dexScreener"`
	Reconciler  ReconcilerConfig  `yaml:"reconciler"`
	Watchlist   WatchlistConfig   `yaml:"watchlist"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Logging     LoggingConfig     `yaml:"logging"`
	Swagger     SwaggerConfig     `yaml:"swagger"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	Pprof        bool   `yaml:"pprof"`
}

// DEXScreenerConfig holds the configuration for the DEX Screener client.
type DEXScreenerConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
}

// ReconcilerConfig controls live price reconciliation of holdings sessions.
type ReconcilerConfig struct {
	IntervalSeconds       int `yaml:"intervalSeconds"`
	MaxConcurrentRequests int `yaml:"maxConcurrentRequests"`
	MaxSessions           int `yaml:"maxSessions"`
	// SessionIdleTimeoutSeconds closes a session nobody has read for that long. Negative disables it.
	SessionIdleTimeoutSeconds int `yaml:"sessionIdleTimeoutSeconds"`
}

// WatchlistConfig holds the storage slot of the watchlist.
type WatchlistConfig struct {
	File string `yaml:"file"`
}

// GeminiConfig holds the analysis uplink configuration.
type GeminiConfig struct {
	APIKey            string `yaml:"apiKey"`
	Model             string `yaml:"model"`
	TimeoutSeconds    int    `yaml:"timeoutSeconds"`
	UseResponseSchema bool   `yaml:"useResponseSchema"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// RequestTimeout is the DEX Screener per-request timeout.
func (c DEXScreenerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMillis) * time.Millisecond
}

// Interval is the reconciliation cadence.
func (c ReconcilerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// IdleTimeout is how long an unread session keeps reconciling; zero means forever.
func (c ReconcilerConfig) IdleTimeout() time.Duration {
	if c.SessionIdleTimeoutSeconds < 0 {
		return 0
	}
	return time.Duration(c.SessionIdleTimeoutSeconds) * time.Second
}

// Timeout bounds one analysis uplink.
func (c GeminiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from a YAML file. A missing file is not an
// error: every field has a default. A .env file next to the binary is read
// first so secrets can stay out of the YAML.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to read .env file: %v", err)
	}

	var cfg Config
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	case os.IsNotExist(err):
		logrus.Warnf("Config file %s not found, using defaults", path)
	default:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		// An analysis uplink with search grounding can take a while.
		cfg.Server.WriteTimeout = 120
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.DEXScreener.BaseURL == "" {
		cfg.DEXScreener.BaseURL = "https://api.dexscreener.com"
		logrus.Infof("DEXScreener.BaseURL not set, defaulting to %s", cfg.DEXScreener.BaseURL)
	}
	if cfg.DEXScreener.RequestTimeoutMillis == 0 {
		cfg.DEXScreener.RequestTimeoutMillis = 10000
		logrus.Infof("DEXScreener.RequestTimeoutMillis not set, defaulting to %d ms", cfg.DEXScreener.RequestTimeoutMillis)
	}
	if cfg.DEXScreener.RequestsPerMinute == 0 {
		cfg.DEXScreener.RequestsPerMinute = 300 // public search endpoint limit
	}

	if cfg.Reconciler.IntervalSeconds == 0 {
		cfg.Reconciler.IntervalSeconds = 30
		logrus.Infof("Reconciler.IntervalSeconds not set, defaulting to %d s", cfg.Reconciler.IntervalSeconds)
	}
	if cfg.Reconciler.MaxConcurrentRequests == 0 {
		cfg.Reconciler.MaxConcurrentRequests = 10
	}
	if cfg.Reconciler.MaxSessions == 0 {
		cfg.Reconciler.MaxSessions = 64
	}
	if cfg.Reconciler.SessionIdleTimeoutSeconds == 0 {
		cfg.Reconciler.SessionIdleTimeoutSeconds = 300
	}

	if cfg.Watchlist.File == "" {
		cfg.Watchlist.File = "data/dusthunter_watchlist.json"
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-pro"
		logrus.Infof("Gemini.Model not set, defaulting to %s", cfg.Gemini.Model)
	}
	if cfg.Gemini.TimeoutSeconds == 0 {
		cfg.Gemini.TimeoutSeconds = 90
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

// Validate rejects values no default can repair.
func (c *Config) Validate() error {
	if c.Reconciler.IntervalSeconds < 0 {
		return fmt.Errorf("reconciler.intervalSeconds must be positive, got %d", c.Reconciler.IntervalSeconds)
	}
	if c.Reconciler.MaxConcurrentRequests < 0 {
		return fmt.Errorf("reconciler.maxConcurrentRequests must be positive, got %d", c.Reconciler.MaxConcurrentRequests)
	}
	if c.DEXScreener.RequestTimeoutMillis < 0 {
		return fmt.Errorf("dexScreener.requestTimeoutMillis must be positive, got %d", c.DEXScreener.RequestTimeoutMillis)
	}
	if c.Gemini.APIKey == "" {
		logrus.Warn("No Gemini API key configured (gemini.apiKey, GEMINI_API_KEY or GOOGLE_API_KEY); analysis requests will fail")
	}
	return nil
}
