package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/cli/output"
	"github.com/marmos91/dirserve/pkg/client"
)

var (
	getOut   string
	getStrip bool
	getQuiet bool
)

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Download a file",
	Long: `Request a file with GET and print the response as it arrives.

With --out the response is also saved locally. By default the saved file is
the raw response, header and footer included, exactly as the server sent it.
With --strip only the file content is saved, and nothing is kept when the
server reports an error.

Examples:
  # Show a file
  dirservectl get notas.txt

  # Save only the content
  dirservectl get notas.txt --strip --out notas.txt --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOut, "out", "O", "", "Save the response to this local file")
	getCmd.Flags().BoolVar(&getStrip, "strip", false, "Save only the file content, without header and footer")
	getCmd.Flags().BoolVarP(&getQuiet, "quiet", "q", false, "Do not print the response")
}

func runGet(cmd *cobra.Command, args []string) error {
	name := args[0]
	ctx := cmd.Context()

	policy := client.PersistRaw
	if getStrip {
		policy = client.PersistStripped
	}

	session, err := dial(ctx, client.WithPersistPolicy(policy))
	if err != nil {
		return err
	}
	defer func() { _, _ = session.Exit(ctx) }()

	var display io.Writer = os.Stdout
	if getQuiet {
		display = nil
	}

	var sink *os.File
	if getOut != "" {
		sink, err = os.Create(getOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", getOut, err)
		}
	}

	var res client.GetResult
	if sink != nil {
		res, err = session.Get(ctx, name, display, sink)
	} else {
		res, err = session.Get(ctx, name, display, nil)
	}

	p := newPrinter(os.Stderr, output.FormatTable)
	if sink != nil {
		closeErr := sink.Close()
		keep := closeErr == nil && (res.OK || (policy == client.PersistRaw && errors.Is(err, client.ErrRemote)))
		if keep {
			p.Success(fmt.Sprintf("Saved %s (%s)", getOut, output.Bytes(res.Persisted)))
		} else {
			_ = os.Remove(getOut)
		}
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", getOut, closeErr)
		}
	}

	if errors.Is(err, client.ErrRemote) {
		return errors.New(res.Message)
	}
	return err
}
