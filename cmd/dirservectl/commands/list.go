package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/cli/output"
	"github.com/marmos91/dirserve/pkg/client"
)

var listOutput string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the served directory",
	Long: `List the regular files of the served directory with their sizes.

Examples:
  # List files on the default server
  dirservectl list

  # List files on another server as JSON
  dirservectl list --addr files.local:8080 -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// fileList renders listing entries as a table.
type fileList []client.Entry

func (l fileList) Headers() []string {
	return []string{"NAME", "SIZE"}
}

func (l fileList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{e.Name, output.Bytes(e.Size)})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _, _ = session.Exit(ctx) }()

	frame, err := session.List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	entries, err := client.ParseListing(frame)
	if err != nil {
		return err
	}

	p := newPrinter(os.Stdout, format)
	if format == output.FormatTable && len(entries) == 0 {
		p.Println("No files")
		return nil
	}
	return p.Print(fileList(entries))
}
