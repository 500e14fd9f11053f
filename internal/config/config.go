package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Extract   ExtractConfig   `yaml:"extract"`
	Download  DownloadConfig  `yaml:"download"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Keepalive KeepaliveConfig `yaml:"keepalive"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host          string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port          int           `yaml:"port" envconfig:"SERVER_PORT" default:"5000"`
	SessionSecret string        `yaml:"session_secret" envconfig:"SESSION_SECRET"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
}

// StorageConfig holds the downloads root configuration.
type StorageConfig struct {
	DownloadsPath string `yaml:"downloads_path" envconfig:"DOWNLOADS_PATH" default:"downloads"`
	// SentinelName keeps the downloads root present under version control
	// and is exempt from sweeping.
	SentinelName string `yaml:"sentinel_name" envconfig:"SENTINEL_NAME" default:".gitkeep"`
}

// ExtractConfig holds metadata extraction configuration.
type ExtractConfig struct {
	EmbedBaseURL string        `yaml:"embed_base_url" envconfig:"EMBED_BASE_URL" default:"https://www.instagram.com"`
	EmbedTimeout time.Duration `yaml:"embed_timeout" envconfig:"EMBED_TIMEOUT" default:"15s"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" envconfig:"PROBE_TIMEOUT" default:"30s"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	// StageTimeout bounds one download strategy end to end, on top of the
	// per-strategy yt-dlp socket timeouts.
	StageTimeout time.Duration `yaml:"stage_timeout" envconfig:"DOWNLOAD_STAGE_TIMEOUT" default:"2m"`
}

// CleanupConfig holds file lifecycle configuration.
type CleanupConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SWEEP_INTERVAL" default:"30s"`
	MaxFileAge    time.Duration `yaml:"max_file_age" envconfig:"MAX_FILE_AGE" default:"60s"`
	ResponseDelay time.Duration `yaml:"response_delay" envconfig:"CLEANUP_RESPONSE_DELAY" default:"3s"`
}

// KeepaliveConfig holds the self-ping configuration used on hosts that
// idle out inactive services.
type KeepaliveConfig struct {
	ExternalURL string        `yaml:"external_url" envconfig:"RENDER_EXTERNAL_URL"`
	Interval    time.Duration `yaml:"interval" envconfig:"KEEPALIVE_INTERVAL" default:"45s"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"KEEPALIVE_TIMEOUT" default:"30s"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Storage.DownloadsPath == "" {
		return fmt.Errorf("DOWNLOADS_PATH is required")
	}
	if c.Cleanup.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	if c.Cleanup.MaxFileAge <= 0 {
		return fmt.Errorf("MAX_FILE_AGE must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
