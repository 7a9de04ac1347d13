package commands

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/cli/shell"
	"github.com/marmos91/dirserve/pkg/client"
)

var shellStrip bool

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Connect to the server and send each line typed at the prompt as a
command. GET asks whether to save the response locally. Type EXIT, or press
Ctrl+C, to leave.

Examples:
  # Interactive session with the default server
  dirservectl shell

  # Save only file contents, without the response frame
  dirservectl shell --strip`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().BoolVar(&shellStrip, "strip", false, "Save only file contents, without header and footer")
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	policy := client.PersistRaw
	if shellStrip {
		policy = client.PersistStripped
	}

	fmt.Printf("Conectando al servidor %s...\n", serverAddr)
	session, err := dial(ctx, client.WithPersistPolicy(policy))
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	fmt.Print("¡Conectado exitosamente!\n\n")

	return shell.New(session, shell.TerminalPrompter{}, os.Stdout, afero.NewOsFs()).Run(ctx)
}
