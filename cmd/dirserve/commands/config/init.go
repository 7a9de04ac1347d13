package config

import (
	"fmt"
	"os"

	"github.com/marmos91/dirserve/internal/cli/prompt"
	"github.com/marmos91/dirserve/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default configuration file",
	Long: `Write a dirserve configuration file populated with the defaults.

By default, the configuration file is created at $XDG_CONFIG_HOME/dirserve/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  dirserve config init

  # Initialize with custom path
  dirserve config init --config /etc/dirserve/config.yaml

  # Overwrite an existing config without asking
  dirserve config init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	target := configFile
	if target == "" {
		target = config.GetDefaultConfigPath()
	}

	force := initForce
	if _, err := os.Stat(target); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("%s already exists. Overwrite?", target), initForce)
		if err != nil {
			if prompt.IsAborted(err) {
				return fmt.Errorf("aborted")
			}
			return err
		}
		if !ok {
			fmt.Println("Keeping the existing configuration.")
			return nil
		}
		force = true
	}

	var (
		configPath string
		err        error
	)
	if configFile != "" {
		err = config.InitConfigToPath(configFile, force)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(force)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: dirserve start")
	fmt.Printf("  3. Or specify custom config: dirserve start --config %s\n", configPath)

	return nil
}
