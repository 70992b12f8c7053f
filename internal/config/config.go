package config

import (
	"os"
	"strconv"
	"time"

	"focustrack/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Tracker  TrackerConfig
}

// DatabaseConfig holds the SQLite database settings
type DatabaseConfig struct {
	Path string
}

// AIConfig holds classifier settings
type AIConfig struct {
	OpenAIKey     string
	OpenAIModel   string
	BaseURL       string
	MinConfidence float64
	Timeout       time.Duration
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port string
}

// TrackerConfig holds segmentation engine settings
type TrackerConfig struct {
	// SamplerCommand is the external command producing focus samples as
	// JSON on stdout, e.g. a compositor query script.
	SamplerCommand string

	SampleInterval    time.Duration
	HeartbeatInterval time.Duration
	CheckpointSeconds int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			Path: getEnvOrDefault("FOCUSTRACK_DB", "focustrack.db"),
		},
		AI: AIConfig{
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			MinConfidence: getEnvFloatOrDefault("CLASSIFIER_MIN_CONFIDENCE", 0.7),
			Timeout:       getEnvDurationOrDefault("CLASSIFIER_TIMEOUT", 30*time.Second),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8090"),
		},
		Tracker: TrackerConfig{
			SamplerCommand:    os.Getenv("SAMPLER_COMMAND"),
			SampleInterval:    getEnvDurationOrDefault("SAMPLE_INTERVAL", 2*time.Second),
			HeartbeatInterval: getEnvDurationOrDefault("HEARTBEAT_INTERVAL", 2*time.Second),
			CheckpointSeconds: int64(getEnvIntOrDefault("CHECKPOINT_SECONDS", 30)),
		},
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return errors.ConfigInvalid("FOCUSTRACK_DB must not be empty")
	}
	if c.AI.MinConfidence < 0 || c.AI.MinConfidence > 1 {
		return errors.ConfigInvalid("CLASSIFIER_MIN_CONFIDENCE must be in [0, 1]")
	}
	if c.Tracker.SampleInterval <= 0 || c.Tracker.HeartbeatInterval <= 0 {
		return errors.ConfigInvalid("sampling and heartbeat intervals must be positive")
	}
	if c.Tracker.CheckpointSeconds <= 0 {
		return errors.ConfigInvalid("CHECKPOINT_SECONDS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloatOrDefault(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
