// Package shell implements the interactive dirservectl session: commands
// typed by the user are sent verbatim and responses printed as they arrive.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/marmos91/dirserve/internal/cli/prompt"
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
	"github.com/marmos91/dirserve/pkg/client"
)

const (
	responseBanner = "\n--- Respuesta del servidor ---"
	responseRule   = "------------------------------"
)

// Prompter collects user input for the shell.
type Prompter interface {
	// Command returns the next command line.
	Command() (string, error)

	// ConfirmSave asks whether the next GET response should be saved.
	ConfirmSave() (bool, error)

	// Filename asks for the local file to save into.
	Filename() (string, error)
}

// Shell drives one session until EXIT, end of input, or a connection error.
type Shell struct {
	session *client.Session
	prompt  Prompter
	out     io.Writer
	fs      afero.Fs
}

// New creates a shell. Saved files are created on fs.
func New(session *client.Session, p Prompter, out io.Writer, fs afero.Fs) *Shell {
	return &Shell{session: session, prompt: p, out: out, fs: fs}
}

// Run prints the welcome banner and runs the prompt loop.
//
// Aborting the prompt (Ctrl+C, Ctrl+D) ends the session with EXIT, like
// typing it. Errors from the server for a single command are printed and
// the loop continues; connection errors end it.
func (s *Shell) Run(ctx context.Context) error {
	s.println(s.session.Welcome())

	for {
		line, err := s.prompt.Command()
		if err != nil {
			if prompt.IsAborted(err) {
				return s.exit(ctx)
			}
			return err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		cmd := dirproto.ParseCommand(line)
		if cmd.Verb == dirproto.VerbExit {
			return s.exit(ctx)
		}

		s.println(responseBanner)
		if cmd.Verb == dirproto.VerbGet {
			err = s.get(ctx, cmd.Arg)
		} else {
			err = s.send(ctx, line)
		}
		if err != nil {
			return err
		}
		s.println(responseRule)
	}
}

func (s *Shell) send(ctx context.Context, line string) error {
	resp, err := s.session.Send(ctx, line)
	if err != nil {
		return err
	}
	s.print(resp)
	return nil
}

func (s *Shell) get(ctx context.Context, name string) error {
	save, err := s.prompt.ConfirmSave()
	if err != nil && !prompt.IsAborted(err) {
		return err
	}

	var (
		file afero.File
		path string
	)
	if save {
		path, err = s.prompt.Filename()
		switch {
		case err != nil && !prompt.IsAborted(err):
			return err
		case err == nil && strings.TrimSpace(path) != "":
			file, err = s.fs.Create(path)
			if err != nil {
				s.println("Error: No se pudo crear el archivo local")
				file = nil
			}
		}
	}

	var sink io.Writer
	if file != nil {
		sink = file
	}

	res, getErr := s.session.Get(ctx, name, s.out, sink)

	if file != nil {
		closeErr := file.Close()
		if s.keep(res, getErr) && closeErr == nil {
			s.printf("\nArchivo guardado como: %s\n", path)
		} else {
			_ = s.fs.Remove(path)
			s.printf("\nArchivo local descartado: %s\n", path)
		}
	}

	if getErr != nil && !errors.Is(getErr, client.ErrRemote) {
		return getErr
	}
	return nil
}

// keep reports whether a saved file is worth keeping. Raw saves keep the
// frame exactly as received, error line included. Stripped saves are only
// complete after a successful transfer.
func (s *Shell) keep(res client.GetResult, err error) bool {
	if s.session.PersistPolicy() == client.PersistRaw {
		return err == nil || errors.Is(err, client.ErrRemote)
	}
	return res.OK
}

func (s *Shell) exit(ctx context.Context) error {
	farewell, err := s.session.Exit(ctx)
	s.print(farewell)
	s.println("\nConexión cerrada")
	return err
}

func (s *Shell) print(text string) {
	_, _ = io.WriteString(s.out, text)
}

func (s *Shell) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
