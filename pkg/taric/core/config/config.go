// Package config holds the importer configuration tree and its loader.
package config

// EmbeddedConfig is the raw YAML compiled into the binary.
type EmbeddedConfig []byte

// LogLevel is a textual log level, shared by the importer and gorm loggers.
type LogLevel string

const (
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelSilent LogLevel = "SILENT"
)

// DefaultMaxChunkSize is the serialized size after which the chunker closes
// the chunk it is writing.
const DefaultMaxChunkSize = 50 * 1024 * 1024

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	// Level is the importer log level.
	Level string `yaml:"level"`
	// GormLevel is the gorm SQL log level (SILENT, ERROR, WARN, INFO).
	GormLevel string `yaml:"gorm_level"`
}

// SystemConfig holds process-wide settings.
type SystemConfig struct {
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ImporterConfig configures chunking and chunk execution.
type ImporterConfig struct {
	// MaxChunkSize is the chunk size threshold in bytes.
	MaxChunkSize int `yaml:"max_chunk_size"`
	// Workers bounds how many chunks run concurrently across batches.
	Workers int `yaml:"workers"`
	// RecordGroup is the default record_code+subrecord_code allow-list.
	// Empty means every record is kept.
	RecordGroup []string `yaml:"record_group"`
	// Author is recorded on batches and workbaskets created by the CLI.
	Author string `yaml:"author"`
	// SplitJob chunks envelopes per record code and chapter instead of in
	// document order.
	SplitJob bool `yaml:"split_job"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddress serves /metrics when non-empty, e.g. ":9090".
	ListenAddress string `yaml:"listen_address"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	// OTLPEndpoint is the OTLP collector host:port. Empty disables export.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	// Protocol is "http" or "grpc".
	Protocol string `yaml:"protocol"`
	// Insecure disables TLS towards the collector.
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// SourceConfig selects where envelopes are read from.
type SourceConfig struct {
	// Type is one of "local", "s3" or "gcs".
	Type    string `yaml:"type"`
	BaseDir string `yaml:"base_dir"`
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
	Prefix  string `yaml:"prefix"`
	// Endpoint overrides the object store endpoint, e.g. for an emulator.
	Endpoint string `yaml:"endpoint"`
}

// TamatoConfig is everything under the top-level "tamato" key.
type TamatoConfig struct {
	System   SystemConfig   `yaml:"system"`
	Importer ImporterConfig `yaml:"importer"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Source   SourceConfig   `yaml:"source"`
	// DatabaseRef names the entry in Databases used for all storage.
	DatabaseRef string `yaml:"database_ref"`
	// Databases holds raw connection settings, decoded per dialect.
	Databases map[string]interface{} `yaml:"database"`
}

// Config is the root of the configuration tree.
type Config struct {
	Tamato         TamatoConfig   `yaml:"tamato"`
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Tamato: TamatoConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", GormLevel: string(LogLevelSilent)},
			},
			Importer: ImporterConfig{
				MaxChunkSize: DefaultMaxChunkSize,
				Workers:      4,
				Author:       "importer",
			},
			Tracing: TracingConfig{
				Protocol:    "http",
				ServiceName: "tamato-importer",
			},
			Source: SourceConfig{
				Type:    "local",
				BaseDir: ".",
			},
			DatabaseRef: "default",
			Databases:   map[string]interface{}{},
		},
	}
}
