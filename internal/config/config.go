// Package config loads the pipeline configuration from YAML with env
// overrides. AI API keys stay environment-only; their presence alone decides
// which model adapters are active.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Deliverable DeliverableConfig `yaml:"deliverables"`
	Admin       AdminConfig       `yaml:"admin"`
	Runner      RunnerConfig      `yaml:"runner"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects the backing store. With a DatabaseURL the PostgreSQL
// store is used; otherwise the embedded store persists to SnapshotPath.
type StorageConfig struct {
	DatabaseURL  string `yaml:"database_url"`
	SnapshotPath string `yaml:"snapshot_path"`
}

// RedisConfig holds the optional redis connection used for sweep locks and
// landing-page caching.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// SchedulerConfig controls the weekly sweep scheduler.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Timezone string `yaml:"timezone"`
}

// DeliverableConfig controls where the outreach kit lands.
type DeliverableConfig struct {
	OutputDir       string `yaml:"output_dir"`
	BaseURL         string `yaml:"base_url"`
	SenderSignature string `yaml:"sender_signature"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
}

// AdminConfig guards the HTML operator views.
type AdminConfig struct {
	Token string `yaml:"token"`
}

// RunnerConfig tunes the test runner.
type RunnerConfig struct {
	StaleAfterMinutes int `yaml:"stale_after_minutes"`
}

// StaleAfter returns the TESTING recovery window.
func (c RunnerConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleAfterMinutes) * time.Minute
}

// Load reads the YAML file and applies defaults. A missing file is not an
// error; the defaults then stand alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// Defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "./data/prospecting.db"
	}
	if cfg.Scheduler.Timezone == "" {
		cfg.Scheduler.Timezone = "Europe/Rome"
	}
	if cfg.Deliverable.OutputDir == "" {
		cfg.Deliverable.OutputDir = "./send_queue"
	}
	if cfg.Deliverable.BaseURL == "" {
		cfg.Deliverable.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Deliverable.SenderSignature == "" {
		cfg.Deliverable.SenderSignature = "L'équipe EURKAI"
	}
	if cfg.Admin.Token == "" {
		cfg.Admin.Token = "changeme-admin-token"
	}
	if cfg.Runner.StaleAfterMinutes == 0 {
		cfg.Runner.StaleAfterMinutes = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads .env, the YAML file, then env overrides in that order.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("PROSPECTING_DB_PATH"); v != "" {
		cfg.Storage.SnapshotPath = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SEND_QUEUE_DIR"); v != "" {
		cfg.Deliverable.OutputDir = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Deliverable.BaseURL = v
	}
	if v := os.Getenv("SENDER_SIGNATURE"); v != "" {
		cfg.Deliverable.SenderSignature = v
	}
	if v := os.Getenv("SEND_QUEUE_S3_BUCKET"); v != "" {
		cfg.Deliverable.S3Bucket = v
	}
	if v := os.Getenv("SEND_QUEUE_S3_PREFIX"); v != "" {
		cfg.Deliverable.S3Prefix = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		cfg.Admin.Token = v
	}
	if v := os.Getenv("STALE_AFTER_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.Runner.StaleAfterMinutes = minutes
		}
	}

	return cfg, nil
}
