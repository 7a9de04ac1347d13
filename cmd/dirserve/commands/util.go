package commands

import (
	"fmt"

	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads an explicit config file strictly. Without one, the
// default location is used when present, otherwise built-in defaults.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.MustLoad(configFile)
	}
	return config.Load("")
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
