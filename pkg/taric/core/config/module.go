package config

import "go.uber.org/fx"

// NewImporterConfigProvider exposes the importer section on its own.
func NewImporterConfigProvider(cfg *Config) *ImporterConfig {
	return &cfg.Tamato.Importer
}

// NewSourceConfigProvider exposes the envelope source section.
func NewSourceConfigProvider(cfg *Config) *SourceConfig {
	return &cfg.Tamato.Source
}

// Module provides *Config and its sections.
var Module = fx.Options(
	fx.Provide(NewConfigProvider),
	fx.Provide(NewImporterConfigProvider),
	fx.Provide(NewSourceConfigProvider),
)
