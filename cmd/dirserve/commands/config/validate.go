package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/marmos91/dirserve/internal/cli/output"
	"github.com/marmos91/dirserve/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dirserve configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  dirserve config validate

  # Validate specific config file
  dirserve config validate --config /etc/dirserve/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if info, err := os.Stat(cfg.Server.Root); err != nil {
		if !*cfg.Server.CreateRoot {
			warnings = append(warnings, fmt.Sprintf("served root %s does not exist and create_root is false", cfg.Server.Root))
		}
	} else if !info.IsDir() {
		warnings = append(warnings, fmt.Sprintf("served root %s is not a directory", cfg.Server.Root))
	}
	if cfg.Server.Timeouts.Read == 0 {
		warnings = append(warnings, "server.timeouts.read is 0: idle clients are never disconnected")
	}

	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	api := "disabled"
	if cfg.API.IsEnabled() {
		api = strconv.Itoa(cfg.API.Port)
	}

	fmt.Printf("\nConfiguration summary:\n")
	return output.SimpleTable(os.Stdout, [][2]string{
		{"Served root", cfg.Server.Root},
		{"Server port", strconv.Itoa(cfg.Server.Port)},
		{"Transfer unit", cfg.Server.TransferUnit.String()},
		{"API port", api},
		{"Metrics", strconv.FormatBool(cfg.Metrics.Enabled)},
		{"Log level", cfg.Logging.Level},
	})
}
