package dirserve

import (
	"fmt"
	"time"

	"github.com/marmos91/dirserve/internal/bytesize"
	"github.com/marmos91/dirserve/pkg/servedroot"
)

const (
	// DefaultPort is the TCP port the server listens on when none is set.
	DefaultPort = 8080

	// DefaultRoot is the served directory when none is set.
	DefaultRoot = "./archivos"

	// MaxTransferUnit caps the streaming chunk size.
	MaxTransferUnit = bytesize.MiB

	// MinLineLength is the smallest command line the dispatcher accepts,
	// whatever the transfer unit.
	MinLineLength = 256

	// DefaultReadTimeout and DefaultWriteTimeout are the timeouts written
	// by DefaultConfig. Zero is a valid setting for both, so ApplyDefaults
	// never fills them in.
	DefaultReadTimeout  = 5 * time.Minute
	DefaultWriteTimeout = 30 * time.Second
)

// TimeoutsConfig groups all timeout-related configuration.
type TimeoutsConfig struct {
	// Read bounds the wait for the next command line. It doubles as the
	// idle timeout. 0 disables it.
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write bounds the time to send one frame, or one file chunk.
	// 0 disables it.
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`

	// Shutdown is the maximum duration to wait for active connections
	// during graceful shutdown before they are force-closed.
	Shutdown time.Duration `mapstructure:"shutdown" validate:"required,gt=0" yaml:"shutdown"`
}

// Config holds configuration parameters for the directory server.
//
// Default values (applied by New if zero):
//   - Root: ./archivos
//   - CreateRoot: true
//   - TransferUnit: 4KiB
//   - MaxConnections: 0 (unlimited)
//   - Timeouts.Shutdown: 30s
//   - MetricsLogInterval: 5m
//
// Port, Timeouts.Read and Timeouts.Write keep their zero value, which has
// a meaning of its own. DefaultConfig returns the values used when the
// configuration file does not set them.
type Config struct {
	// BindAddress is the IP address to bind to. Empty binds all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address"`

	// Port is the TCP port to listen on. 0 picks a free port, which is
	// only useful in tests.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// Root is the directory whose regular files are served.
	Root string `mapstructure:"root" yaml:"root"`

	// CreateRoot creates Root at startup if it does not exist.
	CreateRoot *bool `mapstructure:"create_root" yaml:"create_root"`

	// TransferUnit is the chunk size used to stream files. It also bounds
	// the command line length (never below MinLineLength).
	TransferUnit bytesize.ByteSize `mapstructure:"transfer_unit" yaml:"transfer_unit"`

	// MaxConnections limits concurrent clients. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`

	// MetricsLogInterval is the period of the active-connections log line.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	cfg := Config{
		Port: DefaultPort,
		Timeouts: TimeoutsConfig{
			Read:  DefaultReadTimeout,
			Write: DefaultWriteTimeout,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero values that have no meaning of their own.
func (c *Config) ApplyDefaults() {
	if c.Root == "" {
		c.Root = DefaultRoot
	}
	if c.CreateRoot == nil {
		create := true
		c.CreateRoot = &create
	}
	if c.TransferUnit == 0 {
		c.TransferUnit = servedroot.DefaultTransferUnit
	}
	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = 30 * time.Second
	}
	if c.MetricsLogInterval == 0 {
		c.MetricsLogInterval = 5 * time.Minute
	}
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.Root == "" {
		return fmt.Errorf("invalid root: must not be empty")
	}
	if c.TransferUnit < 1 || c.TransferUnit > MaxTransferUnit {
		return fmt.Errorf("invalid transfer_unit %s: must be between 1 B and %s", c.TransferUnit, MaxTransferUnit)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid max_connections %d: must be >= 0", c.MaxConnections)
	}
	if c.Timeouts.Read < 0 {
		return fmt.Errorf("invalid timeouts.read %v: must be >= 0", c.Timeouts.Read)
	}
	if c.Timeouts.Write < 0 {
		return fmt.Errorf("invalid timeouts.write %v: must be >= 0", c.Timeouts.Write)
	}
	if c.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("invalid timeouts.shutdown %v: must be > 0", c.Timeouts.Shutdown)
	}
	if c.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid metrics_log_interval %v: must be >= 0", c.MetricsLogInterval)
	}
	return nil
}

// LineLimit is the longest command line, terminator included, the
// dispatcher reads before answering with the unknown-command frame.
func (c *Config) LineLimit() int {
	if n := c.TransferUnit.Int(); n > MinLineLength {
		return n
	}
	return MinLineLength
}
