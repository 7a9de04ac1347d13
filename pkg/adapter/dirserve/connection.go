package dirserve

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
	"github.com/marmos91/dirserve/internal/telemetry"
	"github.com/marmos91/dirserve/pkg/servedroot"
)

// Dispatcher states, logged at DEBUG on every transition.
const (
	stateAwaitCommand = "AWAIT_COMMAND"
	stateServingList  = "SERVING_LIST"
	stateServingGet   = "SERVING_GET"
	stateClosing      = "CLOSING"
	stateClosed       = "CLOSED"
)

// Command outcomes beyond the ones servedroot reports.
const (
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Connection runs the command dispatcher for one client.
type Connection struct {
	server *Adapter
	conn   net.Conn
	id     string
	out    *frameWriter
}

// NewConnection creates the dispatcher for conn. id identifies the
// connection in logs and traces.
func NewConnection(server *Adapter, conn net.Conn, id string) *Connection {
	return &Connection{
		server: server,
		conn:   conn,
		id:     id,
		out:    &frameWriter{conn: conn, timeout: server.config.Timeouts.Write},
	}
}

// frameWriter arms the write deadline before every write and counts the
// bytes that reached the connection.
type frameWriter struct {
	conn    net.Conn
	timeout time.Duration
	written int64
}

func (w *frameWriter) Write(p []byte) (int, error) {
	if w.timeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
			return 0, err
		}
	}
	n, err := w.conn.Write(p)
	w.written += int64(n)
	return n, err
}

// Serve greets the client and handles commands until EXIT, disconnect,
// an I/O failure or shutdown. The connection is always closed on return.
func (c *Connection) Serve(ctx context.Context) {
	clientAddr := c.conn.RemoteAddr().String()

	ctx, span := telemetry.StartConnectionSpan(ctx, c.id, clientAddr)
	defer span.End()
	ctx = logger.WithContext(ctx, logger.NewLogContext(c.id, clientAddr))
	defer c.handleConnectionClose(ctx)

	logger.InfoCtx(ctx, "New connection")

	if err := dirproto.WriteString(c.out, dirproto.Welcome); err != nil {
		logger.DebugCtx(ctx, "Failed to send welcome", logger.Err(err))
		return
	}

	reader := bufio.NewReaderSize(c.conn, c.server.config.LineLimit())

	for {
		if c.stopping(ctx) {
			return
		}

		c.setState(ctx, stateAwaitCommand)

		if !c.armReadDeadline(ctx) {
			return
		}

		line, err := dirproto.ReadCommand(reader)
		var cmd dirproto.Command
		switch {
		case err == nil:
			cmd = dirproto.ParseCommand(line)
		case errors.Is(err, dirproto.ErrLineTooLong):
			logger.DebugCtx(ctx, "Command line too long", "limit", reader.Size())
			cmd = dirproto.Command{Verb: dirproto.VerbUnknown}
		default:
			c.logReadError(ctx, err)
			return
		}

		if !c.dispatch(ctx, cmd) {
			return
		}
	}
}

// stopping reports whether the connection must stop taking commands.
func (c *Connection) stopping(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		logger.DebugCtx(ctx, "Connection closed due to context cancellation")
		return true
	case <-c.server.Shutdown:
		logger.DebugCtx(ctx, "Connection closed due to server shutdown")
		return true
	default:
		return false
	}
}

// armReadDeadline sets the per-command read deadline. Shutdown is checked
// again afterwards: a deadline armed after interruptBlockingReads ran would
// otherwise replace its short one.
func (c *Connection) armReadDeadline(ctx context.Context) bool {
	if c.server.config.Timeouts.Read > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.server.config.Timeouts.Read)); err != nil {
			logger.DebugCtx(ctx, "Failed to set read deadline", logger.Err(err))
			return false
		}
	}
	return !c.stopping(ctx)
}

// dispatch serves one command and reports whether the connection stays open.
func (c *Connection) dispatch(ctx context.Context, cmd dirproto.Command) bool {
	verb := cmd.Verb.String()

	ctx, span := telemetry.StartCommandSpan(ctx, verb, cmd.Arg)
	defer span.End()
	lc := logger.FromContext(ctx).WithCommand(verb, cmd.Arg).WithTrace(telemetry.TraceID(ctx))
	ctx = logger.WithContext(ctx, lc)

	logger.InfoCtx(ctx, "Command received")

	before := c.out.written
	keepOpen := true

	var (
		outcome string
		err     error
	)
	switch cmd.Verb {
	case dirproto.VerbList:
		c.setState(ctx, stateServingList)
		outcome, err = c.handleList(ctx)
	case dirproto.VerbGet:
		c.setState(ctx, stateServingGet)
		outcome, err = c.handleGet(ctx, cmd.Arg)
	case dirproto.VerbExit:
		c.setState(ctx, stateClosing)
		outcome, err = servedroot.OutcomeOK, dirproto.WriteString(c.out, dirproto.Farewell)
		keepOpen = false
	default:
		logger.DebugCtx(ctx, "Unknown command", "line", cmd.Raw)
		outcome, err = servedroot.OutcomeOK, dirproto.WriteString(c.out, dirproto.UnknownCommand)
	}

	sent := c.out.written - before
	if err != nil {
		outcome = OutcomeError
		keepOpen = false
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "Command aborted", logger.Err(err))
	}

	span.SetAttributes(telemetry.Outcome(outcome), telemetry.BytesSent(sent))

	duration := time.Since(lc.StartTime)
	if m := c.server.metrics; m != nil {
		m.RecordCommand(verb, outcome, duration)
		m.RecordBytesSent(verb, sent)
	}

	logger.DebugCtx(ctx, "Command served",
		logger.KeyOutcome, outcome,
		logger.Bytes(sent),
		logger.DurationMs(lc.DurationMs()))

	return keepOpen
}

func (c *Connection) handleList(ctx context.Context) (string, error) {
	root := c.server.root

	entries, err := root.List(ctx)
	if err != nil {
		logger.WarnCtx(ctx, "Cannot open served directory", logger.KeyRoot, root.Path(), logger.Err(err))
		return OutcomeUnavailable, dirproto.WriteString(c.out, dirproto.DirectoryError)
	}

	if _, err := dirproto.WriteListing(c.out, servedroot.ListingEntries(entries)); err != nil {
		return OutcomeError, err
	}

	telemetry.SetAttributes(ctx, telemetry.Entries(len(entries)))
	if m := c.server.metrics; m != nil {
		m.RecordEntriesListed(len(entries))
	}
	logger.InfoCtx(ctx, "Listing sent", logger.Entries(len(entries)))
	return servedroot.OutcomeOK, nil
}

func (c *Connection) handleGet(ctx context.Context, name string) (string, error) {
	if err := servedroot.ValidateName(name); err != nil {
		logger.InfoCtx(ctx, "Invalid file name", logger.Err(err))
		return servedroot.OutcomeInvalid, dirproto.WriteString(c.out, dirproto.InvalidName)
	}

	logger.InfoCtx(ctx, "Sending file")

	res, err := c.server.root.Stream(ctx, c.out, name)
	telemetry.SetAttributes(ctx,
		telemetry.Size(res.Size),
		telemetry.Chunks(res.Chunks),
		telemetry.TransferUnit(c.server.root.TransferUnit()))
	if err != nil {
		return res.Outcome, err
	}

	switch res.Outcome {
	case servedroot.OutcomeOK:
		logger.InfoCtx(ctx, "File sent",
			logger.Bytes(res.Size), logger.KeyChunks, res.Chunks)
	case servedroot.OutcomeMissing:
		logger.InfoCtx(ctx, "File not found")
	case servedroot.OutcomeInterrupted:
		logger.WarnCtx(ctx, "File read interrupted", logger.Bytes(res.Size))
	}
	return res.Outcome, nil
}

func (c *Connection) setState(ctx context.Context, state string) {
	logger.DebugCtx(ctx, "Connection state", logger.State(state))
}

func (c *Connection) logReadError(ctx context.Context, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		logger.DebugCtx(ctx, "Connection closed by client")
	case errors.Is(err, net.ErrClosed):
		logger.DebugCtx(ctx, "Connection closed locally")
	case errors.As(err, &netErr) && netErr.Timeout():
		logger.DebugCtx(ctx, "Connection timed out", logger.Err(err))
	default:
		logger.DebugCtx(ctx, "Error reading command", logger.Err(err))
	}
}

// handleConnectionClose recovers a panicking dispatcher and closes the
// connection. It must be deferred directly by Serve.
func (c *Connection) handleConnectionClose(ctx context.Context) {
	if r := recover(); r != nil {
		logger.ErrorCtx(ctx, "Panic in connection handler",
			"panic", r,
			"stack", string(debug.Stack()))
	}

	c.setState(ctx, stateClosed)
	_ = c.conn.Close()
	logger.InfoCtx(ctx, "Connection closed",
		logger.DurationMs(logger.FromContext(ctx).DurationMs()))
}
