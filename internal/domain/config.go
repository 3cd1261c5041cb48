package domain

import (
	"fmt"
	"time"
)

// Config holds the complete Shrike serving configuration.
type Config struct {
	Server ServerConfig `json:"server"`

	// Tier determines infrastructure availability.
	Tier Tier `json:"tier"`

	Artifacts ArtifactStoreConfig `json:"artifacts"`
	Cache     CacheConfig         `json:"cache"`
	EventBus  EventBusConfig      `json:"eventBus"`

	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// Tier represents the deployment tier.
type Tier string

const (
	// TierCommunity runs on filesystem artifacts + in-process cache and bus.
	TierCommunity Tier = "community"

	// TierPro runs on SQL artifacts + Redis + NATS.
	TierPro Tier = "pro"
)

// DefaultConfig returns a default Community tier configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Artifacts: ArtifactStoreConfig{
			Driver: "fs",
			Dir:    "./models",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "shrike",
		},
	}
}

// ProConfig returns a Pro tier configuration.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Artifacts = ArtifactStoreConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "shrike",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}

// TrainingConfig drives the offline pipeline. Validated before any
// computation starts.
type TrainingConfig struct {
	// DatasetPath points at the labeled PaySim-schema CSV.
	DatasetPath string

	// SampleFraction is the fraction of legitimate rows to retain. Fraud
	// rows are always kept in full.
	SampleFraction float64

	// UseFullDataset overrides SampleFraction to 1.0.
	UseFullDataset bool

	// TestFraction is the held-out split size.
	TestFraction float64

	// Seed fixes every random choice in the pipeline.
	Seed int64
}

// DefaultTrainingConfig returns the development-mode pipeline configuration.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		DatasetPath:    "data/onlinefraud.csv",
		SampleFraction: 0.1,
		TestFraction:   0.2,
		Seed:           42,
	}
}

// Validate checks the configuration and applies the full-dataset override.
func (c *TrainingConfig) Validate() error {
	if c.UseFullDataset {
		c.SampleFraction = 1.0
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return fmt.Errorf("sample fraction must be in (0, 1], got %v", c.SampleFraction)
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in (0, 1), got %v", c.TestFraction)
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("dataset path is required")
	}
	return nil
}
