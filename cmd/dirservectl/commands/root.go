// Package commands implements the CLI commands of the dirservectl client.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/bytesize"
	"github.com/marmos91/dirserve/internal/cli/output"
	"github.com/marmos91/dirserve/pkg/client"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Global flags.
var (
	serverAddr   string
	transferUnit string
	timeout      time.Duration
	noColor      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dirservectl",
	Short: "dirservectl - Client for dirserve",
	Long: `dirservectl talks to a dirserve server: list the served directory,
download files, or drive an interactive session.

Use "dirservectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel the running operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "addr", "a", client.DefaultAddress, "Server address (host:port)")
	rootCmd.PersistentFlags().StringVar(&transferUnit, "transfer-unit", "4KiB", "Read size used for responses")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for each operation (0 disables)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(statusCmd)
}

// dial connects to the server named by the global flags.
func dial(ctx context.Context, opts ...client.Option) (*client.Session, error) {
	unit, err := bytesize.ParseByteSize(transferUnit)
	if err != nil {
		return nil, fmt.Errorf("invalid --transfer-unit: %w", err)
	}
	if unit < 1 {
		return nil, fmt.Errorf("invalid --transfer-unit %s: must be at least 1 byte", unit)
	}

	opts = append([]client.Option{
		client.WithTransferUnit(unit.Int()),
		client.WithTimeout(timeout),
	}, opts...)
	return client.Dial(ctx, serverAddr, opts...)
}

// newPrinter creates a printer honouring --no-color.
func newPrinter(w io.Writer, format output.Format) *output.Printer {
	p := output.NewPrinter(w, format)
	if noColor {
		p.WithColor(false)
	}
	return p
}
