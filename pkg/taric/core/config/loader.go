package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

const moduleName = "config"

// ConfigParams are the fx inputs of NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// LoadConfig builds the configuration in three layers: defaults, the
// embedded YAML, then environment variables (after loading envFilePath
// into the environment, if present).
func LoadConfig(envFilePath string, embedded EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf("env file %s not loaded: %v", envFilePath, err)
		}
	}

	cfg := NewConfig()

	var fromYAML Config
	if err := yaml.Unmarshal(embedded, &fromYAML); err != nil {
		return nil, exception.NewImportError(moduleName, "failed to unmarshal embedded config", err, false)
	}
	mergeTamatoConfig(&cfg.Tamato, &fromYAML.Tamato)

	if err := loadStructFromEnv(reflect.ValueOf(&cfg.Tamato).Elem(), "TAMATO_"); err != nil {
		return nil, exception.NewImportError(moduleName, "failed to apply environment overrides", err, false)
	}
	cfg.EmbeddedConfig = embedded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfigProvider loads the configuration and applies the log level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}
	logger.SetLogLevel(cfg.Tamato.System.Logging.Level)
	logger.Infof("log level set to %s", cfg.Tamato.System.Logging.Level)
	return cfg, nil
}

// Validate rejects settings the importer cannot run with.
func (c *Config) Validate() error {
	imp := c.Tamato.Importer
	if imp.MaxChunkSize <= 0 {
		return exception.NewImportErrorf(moduleName, "importer.max_chunk_size must be positive, got %d", imp.MaxChunkSize)
	}
	if imp.Workers <= 0 {
		return exception.NewImportErrorf(moduleName, "importer.workers must be positive, got %d", imp.Workers)
	}
	for _, code := range imp.RecordGroup {
		if len(code) != 5 {
			return exception.NewImportErrorf(moduleName, "record group entry %q is not record_code+subrecord_code", code)
		}
	}
	switch c.Tamato.Source.Type {
	case "local", "s3", "gcs":
	default:
		return exception.NewImportErrorf(moduleName, "unknown source type %q", c.Tamato.Source.Type)
	}
	switch c.Tamato.Tracing.Protocol {
	case "http", "grpc":
	default:
		return exception.NewImportErrorf(moduleName, "unknown tracing protocol %q", c.Tamato.Tracing.Protocol)
	}
	return nil
}

func mergeTamatoConfig(dest, src *TamatoConfig) {
	if src.System.Timezone != "" {
		dest.System.Timezone = src.System.Timezone
	}
	if src.System.Logging.Level != "" {
		dest.System.Logging.Level = src.System.Logging.Level
	}
	if src.System.Logging.GormLevel != "" {
		dest.System.Logging.GormLevel = src.System.Logging.GormLevel
	}

	if src.Importer.MaxChunkSize != 0 {
		dest.Importer.MaxChunkSize = src.Importer.MaxChunkSize
	}
	if src.Importer.Workers != 0 {
		dest.Importer.Workers = src.Importer.Workers
	}
	if src.Importer.RecordGroup != nil {
		dest.Importer.RecordGroup = src.Importer.RecordGroup
	}
	if src.Importer.Author != "" {
		dest.Importer.Author = src.Importer.Author
	}
	if src.Importer.SplitJob {
		dest.Importer.SplitJob = true
	}

	if src.Metrics.ListenAddress != "" {
		dest.Metrics.ListenAddress = src.Metrics.ListenAddress
	}
	if src.Tracing.OTLPEndpoint != "" {
		dest.Tracing.OTLPEndpoint = src.Tracing.OTLPEndpoint
	}
	if src.Tracing.Insecure {
		dest.Tracing.Insecure = true
	}
	if src.Tracing.ServiceName != "" {
		dest.Tracing.ServiceName = src.Tracing.ServiceName
	}
	if src.Tracing.Protocol != "" {
		dest.Tracing.Protocol = src.Tracing.Protocol
	}

	if src.Source.Type != "" {
		dest.Source.Type = src.Source.Type
	}
	if src.Source.BaseDir != "" {
		dest.Source.BaseDir = src.Source.BaseDir
	}
	if src.Source.Bucket != "" {
		dest.Source.Bucket = src.Source.Bucket
	}
	if src.Source.Region != "" {
		dest.Source.Region = src.Source.Region
	}
	if src.Source.Prefix != "" {
		dest.Source.Prefix = src.Source.Prefix
	}
	if src.Source.Endpoint != "" {
		dest.Source.Endpoint = src.Source.Endpoint
	}

	if src.DatabaseRef != "" {
		dest.DatabaseRef = src.DatabaseRef
	}
	if dest.Databases == nil {
		dest.Databases = map[string]interface{}{}
	}
	for name, raw := range src.Databases {
		dest.Databases[name] = raw
	}
}

// loadStructFromEnv walks val using yaml tags as names, so
// tamato.importer.workers is overridden by TAMATO_IMPORTER_WORKERS.
// Database settings use TAMATO_DATABASE_<NAME>_<FIELD>.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		tag := strings.Split(typ.Field(i).Tag.Get("yaml"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.ToUpper(prefix + tag)

		switch field.Kind() {
		case reflect.Struct:
			if err := loadStructFromEnv(field, name+"_"); err != nil {
				return err
			}
			continue
		case reflect.Map:
			if field.Type().Key().Kind() == reflect.String && field.Type().Elem().Kind() == reflect.Interface {
				loadDatabasesFromEnv(field, name+"_")
			}
			continue
		}

		raw, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
	}
	return nil
}

// loadDatabasesFromEnv merges TAMATO_DATABASE_<NAME>_<KEY>=value entries into
// the raw database map. Keys are lower-cased to match the yaml tags decoded
// later by mapstructure.
func loadDatabasesFromEnv(mapField reflect.Value, prefix string) {
	if mapField.IsNil() {
		mapField.Set(reflect.MakeMap(mapField.Type()))
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		kv := strings.SplitN(strings.TrimPrefix(env, prefix), "=", 2)
		if len(kv) != 2 {
			continue
		}
		parts := strings.SplitN(kv[0], "_", 2)
		if len(parts) != 2 {
			continue
		}
		dbName, key := strings.ToLower(parts[0]), strings.ToLower(parts[1])

		entry := map[string]interface{}{}
		if existing := mapField.MapIndex(reflect.ValueOf(dbName)); existing.IsValid() {
			if m, ok := existing.Interface().(map[string]interface{}); ok {
				entry = m
			}
		}
		entry[key] = envScalar(kv[1])
		mapField.SetMapIndex(reflect.ValueOf(dbName), reflect.ValueOf(entry))
	}
}

func envScalar(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", field.Type())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	}
	return nil
}
