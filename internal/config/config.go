package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "planner.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds in-memory sqlite backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// WebSocketConfig holds the tuning dashboard stream settings
type WebSocketConfig struct {
	URL string `json:"url" mapstructure:"url"`
}

// StorageConfig selects and configures the recording backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// PlannerConfig tunes prediction and planning.
type PlannerConfig struct {
	BallHorizon         time.Duration
	CarHorizon          time.Duration
	SimStep             time.Duration
	PredictionLookahead time.Duration
	BoostAssumption     float64
	FlipCutoffDistance  float64
	PositionTolerance   float64
	VelocityTolerance   float64
	RecordEvery         int
	RecordMaxDuration   time.Duration
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	BatchTimeout   time.Duration
	MetricInterval time.Duration
	Endpoint       string
	Insecure       bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default. Load calls it; tools that run
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./plannerlogs")
	viper.SetDefault("statusInterval", "1s")

	viper.SetDefault("planner.ballHorizon", "5s")
	viper.SetDefault("planner.carHorizon", "4s")
	viper.SetDefault("planner.simStep", "16666us")
	viper.SetDefault("planner.predictionLookahead", "1s")
	viper.SetDefault("planner.boostAssumption", 100.0)
	viper.SetDefault("planner.flipCutoffDistance", 0.0)
	viper.SetDefault("planner.positionTolerance", 1.0)
	viper.SetDefault("planner.velocityTolerance", 2.0)
	viper.SetDefault("planner.recordEvery", 1)
	viper.SetDefault("planner.recordMaxDuration", "10s")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "planner")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "strikerbot")
	viper.SetDefault("influx.bucket", "prediction_accuracy")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.protocol", "udp")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./recordings/planner.db")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/ws/tuning")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "strikerbot-planner")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		WebSocket: WebSocketConfig{
			URL: viper.GetString("storage.websocket.url"),
		},
	}
}

// GetPlannerConfig returns the prediction and planning settings.
func GetPlannerConfig() PlannerConfig {
	return PlannerConfig{
		BallHorizon:         viper.GetDuration("planner.ballHorizon"),
		CarHorizon:          viper.GetDuration("planner.carHorizon"),
		SimStep:             viper.GetDuration("planner.simStep"),
		PredictionLookahead: viper.GetDuration("planner.predictionLookahead"),
		BoostAssumption:     viper.GetFloat64("planner.boostAssumption"),
		FlipCutoffDistance:  viper.GetFloat64("planner.flipCutoffDistance"),
		PositionTolerance:   viper.GetFloat64("planner.positionTolerance"),
		VelocityTolerance:   viper.GetFloat64("planner.velocityTolerance"),
		RecordEvery:         viper.GetInt("planner.recordEvery"),
		RecordMaxDuration:   viper.GetDuration("planner.recordMaxDuration"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}
