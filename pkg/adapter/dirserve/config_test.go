package dirserve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dirserve/internal/bytesize"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultRoot, cfg.Root)
	require.NotNil(t, cfg.CreateRoot)
	assert.True(t, *cfg.CreateRoot)
	assert.Equal(t, 4*bytesize.KiB, cfg.TransferUnit)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Shutdown)
	assert.Equal(t, 5*time.Minute, cfg.MetricsLogInterval)
	assert.NoError(t, cfg.Validate())

	// Zero means "free port" and "no deadline" for these.
	assert.Zero(t, cfg.Port)
	assert.Zero(t, cfg.Timeouts.Read)
	assert.Zero(t, cfg.Timeouts.Write)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, DefaultReadTimeout, cfg.Timeouts.Read)
	assert.Equal(t, DefaultWriteTimeout, cfg.Timeouts.Write)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Shutdown)
	assert.NoError(t, cfg.Validate())
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	noCreate := false
	cfg := Config{Port: 9000, Root: "/data", CreateRoot: &noCreate, TransferUnit: 1}
	cfg.ApplyDefaults()

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/data", cfg.Root)
	assert.False(t, *cfg.CreateRoot)
	assert.Equal(t, bytesize.ByteSize(1), cfg.TransferUnit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NegativePort", func(c *Config) { c.Port = -1 }},
		{"PortTooLarge", func(c *Config) { c.Port = 70000 }},
		{"TransferUnitTooLarge", func(c *Config) { c.TransferUnit = MaxTransferUnit + 1 }},
		{"NegativeMaxConnections", func(c *Config) { c.MaxConnections = -1 }},
		{"NegativeReadTimeout", func(c *Config) { c.Timeouts.Read = -time.Second }},
		{"NegativeWriteTimeout", func(c *Config) { c.Timeouts.Write = -time.Second }},
		{"NegativeShutdownTimeout", func(c *Config) { c.Timeouts.Shutdown = -time.Second }},
		{"NegativeMetricsInterval", func(c *Config) { c.MetricsLogInterval = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLineLimit(t *testing.T) {
	cfg := Config{TransferUnit: 1}
	assert.Equal(t, MinLineLength, cfg.LineLimit())

	cfg.TransferUnit = 64 * bytesize.KiB
	assert.Equal(t, 64*1024, cfg.LineLimit())
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	assert.Panics(t, func() {
		New(Config{MaxConnections: -1}, nil, nil)
	})
}
