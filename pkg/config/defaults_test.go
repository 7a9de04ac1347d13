package config

import (
	"testing"
	"time"

	"github.com/marmos91/dirserve/internal/bytesize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Zero(t, cfg.Server.Port)
	assert.Zero(t, cfg.Server.Timeouts.Read)
	assert.Zero(t, cfg.Server.Timeouts.Write)
	assert.Equal(t, "./archivos", cfg.Server.Root)
	assert.Equal(t, 4*bytesize.KiB, cfg.Server.TransferUnit)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeouts.Shutdown)
	require.NotNil(t, cfg.Server.CreateRoot)
	assert.True(t, *cfg.Server.CreateRoot)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.Timeouts.Read)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeouts.Write)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.NoError(t, Validate(cfg))
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.True(t, cfg.API.IsEnabled())
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 10*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.API.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.API.IdleTimeout)
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	require.NotNil(t, cfg.Telemetry.Insecure)
	assert.True(t, *cfg.Telemetry.Insecure)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.Equal(t, "http://localhost:4040", cfg.Telemetry.Profiling.Endpoint)
	assert.Contains(t, cfg.Telemetry.Profiling.ProfileTypes, "cpu")
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	noCreate := false
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "JSON",
			Output: "/var/log/dirserve.log",
		},
	}
	cfg.Server.Root = "/srv/files"
	cfg.Server.CreateRoot = &noCreate
	cfg.Server.TransferUnit = 1
	cfg.Server.Timeouts.Shutdown = time.Minute
	cfg.API.Port = 9999

	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/var/log/dirserve.log", cfg.Logging.Output)
	assert.Equal(t, "/srv/files", cfg.Server.Root)
	assert.False(t, *cfg.Server.CreateRoot)
	assert.Equal(t, bytesize.ByteSize(1), cfg.Server.TransferUnit)
	assert.Equal(t, time.Minute, cfg.Server.Timeouts.Shutdown)
	assert.Equal(t, 9999, cfg.API.Port)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, Validate(GetDefaultConfig()))
}

func TestTelemetryOptions(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.SampleRate = 0.25
	cfg.Telemetry.Profiling.Enabled = true

	tc := cfg.TelemetryOptions("1.2.3")
	assert.True(t, tc.Enabled)
	assert.Equal(t, "dirserve", tc.ServiceName)
	assert.Equal(t, "1.2.3", tc.ServiceVersion)
	assert.Equal(t, "localhost:4317", tc.Endpoint)
	assert.True(t, tc.Insecure)
	assert.Equal(t, 0.25, tc.SampleRate)

	pc := cfg.ProfilingOptions("1.2.3")
	assert.True(t, pc.Enabled)
	assert.Equal(t, "http://localhost:4040", pc.Endpoint)
	assert.Equal(t, cfg.Telemetry.Profiling.ProfileTypes, pc.ProfileTypes)
}
