package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/marmos91/dirserve/internal/telemetry"
	"github.com/marmos91/dirserve/pkg/adapter/dirserve"
)

// setKeyDefaults registers defaults for keys whose zero value is a valid
// setting. They only apply when neither the file nor the environment sets
// the key, so an explicit 0 survives ApplyDefaults.
func setKeyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", dirserve.DefaultPort)
	v.SetDefault("server.timeouts.read", dirserve.DefaultReadTimeout)
	v.SetDefault("server.timeouts.write", dirserve.DefaultWriteTimeout)
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - server.port and the server read/write timeouts are left alone: 0 is
//     meaningful there, and Load defaults them per key instead
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	cfg.Server.ApplyDefaults()
	cfg.API.ApplyDefaults()
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	defaults := telemetry.DefaultConfig()

	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}
	if cfg.Insecure == nil {
		insecure := defaults.Insecure
		cfg.Insecure = &insecure
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaults.SampleRate
	}

	applyProfilingDefaults(&cfg.Profiling)
}

// applyProfilingDefaults sets Pyroscope profiling defaults.
func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = telemetry.DefaultProfileTypes()
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
// It is the template written by "dirserve config init".
func GetDefaultConfig() *Config {
	cfg := &Config{Server: dirserve.DefaultConfig()}
	ApplyDefaults(cfg)
	return cfg
}

// TelemetryOptions converts the tracing section into telemetry.Config.
func (c *Config) TelemetryOptions(version string) telemetry.Config {
	insecure := true
	if c.Telemetry.Insecure != nil {
		insecure = *c.Telemetry.Insecure
	}
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    "dirserve",
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// ProfilingOptions converts the profiling section into telemetry.ProfilingConfig.
func (c *Config) ProfilingOptions(version string) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    "dirserve",
		ServiceVersion: version,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
	}
}
