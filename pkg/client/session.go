// Package client implements the client side of the directory protocol: a
// Session that sends command lines and reads responses the way the protocol
// expects, one read for short frames and a Reassembler-driven loop for GET.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/dirserve/internal/bufpool"
	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/internal/protocol/dirproto"
)

const (
	// DefaultAddress is where the server listens by default.
	DefaultAddress = "127.0.0.1:8080"

	// DefaultTransferUnit is the read size used by a Session.
	DefaultTransferUnit = 4096
)

var (
	// ErrClosed is returned by operations on a closed Session.
	ErrClosed = errors.New("client: session closed")

	// ErrIncomplete is returned when the server closes the connection
	// before a GET response is complete.
	ErrIncomplete = errors.New("client: connection closed before end of response")

	// ErrRemote is returned by Get when the response ends with an error line
	// instead of the file footer.
	ErrRemote = errors.New("client: server reported an error")
)

// aLongTimeAgo is a deadline in the past, used to abort blocked I/O.
var aLongTimeAgo = time.Unix(1, 0)

// Option configures a Session.
type Option func(*Session)

// WithTransferUnit sets the read size. Values below 1 are ignored.
func WithTransferUnit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.transferUnit = n
		}
	}
}

// WithPersistPolicy selects what Get writes to its sink.
func WithPersistPolicy(p PersistPolicy) Option {
	return func(s *Session) {
		s.persist = p
	}
}

// WithTimeout bounds every operation that has no context deadline.
// 0 disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// Session is one connection to a server. Operations are serialized; a
// Session may be shared between goroutines but the protocol has no
// pipelining, so they run one at a time.
type Session struct {
	mu sync.Mutex

	conn         net.Conn
	transferUnit int
	persist      PersistPolicy
	timeout      time.Duration
	welcome      string
	closed       bool
}

// Dial connects to addr and reads the welcome banner.
func Dial(ctx context.Context, addr string, opts ...Option) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}

	s, err := NewSession(ctx, conn, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// NewSession wraps an established connection and reads the welcome banner.
// The Session owns conn from now on.
func NewSession(ctx context.Context, conn net.Conn, opts ...Option) (*Session, error) {
	s := &Session{
		conn:         conn,
		transferUnit: DefaultTransferUnit,
	}
	for _, opt := range opts {
		opt(s)
	}

	welcome, err := s.readOnce(ctx)
	if err != nil {
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	s.welcome = welcome

	logger.Debug("Connected", logger.ClientAddr(conn.RemoteAddr().String()))
	return s, nil
}

// Welcome returns the banner received on connect.
func (s *Session) Welcome() string {
	return s.welcome
}

// PersistPolicy returns the policy Get applies to its sink.
func (s *Session) PersistPolicy() PersistPolicy {
	return s.persist
}

// List sends LIST and returns the listing frame, or the directory error
// line. See Send for the single-read caveat.
func (s *Session) List(ctx context.Context) (string, error) {
	return s.Send(ctx, dirproto.Line(dirproto.VerbList, ""))
}

// Send sends a command line and returns the response from exactly one
// read of at most one transfer unit. A newline is appended if missing.
//
// The protocol has no length field for short frames, so a frame larger
// than the transfer unit, or one the network splits, is returned partially.
// Use Get for files.
func (s *Session) Send(ctx context.Context, line string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	if err := s.writeLine(ctx, line); err != nil {
		return "", err
	}
	return s.readOnce(ctx)
}

// Exit sends EXIT, reads the farewell and closes the Session.
func (s *Session) Exit(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}
	defer s.closeLocked()

	if err := s.writeLine(ctx, dirproto.Line(dirproto.VerbExit, "")); err != nil {
		return "", err
	}
	return s.readOnce(ctx)
}

// GetResult describes a completed GET exchange.
type GetResult struct {
	// OK is true when the response ended with the file footer.
	OK bool

	// Received counts the response bytes passed to display, header and
	// footer included.
	Received int64

	// Persisted counts the bytes written to the sink.
	Persisted int64

	// Message is the error line, without its newline, when OK is false.
	Message string
}

// Get requests name and copies the response to display as it arrives,
// and to sink according to the persist policy when sink is not nil.
//
// Reads of one transfer unit are fed to a Reassembler until it finds the
// end of the response; bytes after it are dropped. An error line from the
// server yields ErrRemote along with a result carrying the message.
func (s *Session) Get(ctx context.Context, name string, display, sink io.Writer) (GetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res GetResult
	if s.closed {
		return res, ErrClosed
	}
	if display == nil {
		display = io.Discard
	}

	var strip *stripper
	if sink != nil && s.persist == PersistStripped {
		strip = newStripper(sink)
		sink = strip
	}
	counted := &countingWriter{w: sink}

	if err := s.writeLine(ctx, dirproto.Line(dirproto.VerbGet, name)); err != nil {
		return res, err
	}

	stop := s.armDeadline(ctx)
	defer stop()

	pool := bufpool.For(s.transferUnit)
	buf := pool.Get()
	defer pool.Put(buf)

	r := dirproto.NewReassembler()
	last := &lastLine{}

	for !r.Done() {
		n, readErr := s.conn.Read(buf)
		if n > 0 {
			emit, _ := r.Feed(buf[:n])
			if _, err := display.Write(emit); err != nil {
				return res, fmt.Errorf("display: %w", err)
			}
			res.Received += int64(len(emit))
			last.Write(emit)
			if sink != nil {
				if _, err := counted.Write(emit); err != nil {
					return res, fmt.Errorf("persist: %w", err)
				}
			}
			continue
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			if errors.Is(readErr, io.EOF) {
				return res, fmt.Errorf("%w after %d bytes", ErrIncomplete, res.Received)
			}
			return res, readErr
		}
	}

	res.OK = bytes.Equal(r.Matched(), []byte(dirproto.FileSentinel))
	if strip != nil {
		if err := strip.finish(res.OK); err != nil {
			return res, fmt.Errorf("persist: %w", err)
		}
	}
	res.Persisted = counted.n
	if strip != nil {
		res.Persisted = strip.written
	}

	if !res.OK {
		res.Message = last.errorLine()
		return res, fmt.Errorf("%w: %s", ErrRemote, res.Message)
	}
	return res, nil
}

// Close closes the connection without sending EXIT.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	s.closed = true
	return s.conn.Close()
}

func (s *Session) writeLine(ctx context.Context, line string) error {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	stop := s.armDeadline(ctx)
	defer stop()

	if err := dirproto.WriteString(s.conn, line); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("send command: %w", err)
	}
	return nil
}

// readOnce performs a single read of at most one transfer unit.
func (s *Session) readOnce(ctx context.Context) (string, error) {
	stop := s.armDeadline(ctx)
	defer stop()

	pool := bufpool.For(s.transferUnit)
	buf := pool.Get()
	defer pool.Put(buf)

	n, err := s.conn.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return "", err
}

// armDeadline applies the context deadline (or the session timeout) to the
// connection and aborts blocked I/O when ctx is cancelled. The returned
// func clears both.
func (s *Session) armDeadline(ctx context.Context) func() {
	deadline, ok := ctx.Deadline()
	if !ok && s.timeout > 0 {
		deadline = time.Now().Add(s.timeout)
	}
	_ = s.conn.SetDeadline(deadline)

	stopAfter := context.AfterFunc(ctx, func() {
		_ = s.conn.SetDeadline(aLongTimeAgo)
	})
	return func() {
		stopAfter()
		_ = s.conn.SetDeadline(time.Time{})
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// maxLineMemory bounds what lastLine keeps of a single line.
const maxLineMemory = 512

// lastLine remembers the bytes since the last completed line break, plus
// that completed line, so the terminating error line can be reported.
type lastLine struct {
	prev, cur []byte
}

func (l *lastLine) Write(p []byte) {
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			l.cur = keepLast(append(l.cur, p...))
			return
		}
		l.cur = keepLast(append(l.cur, p[:i]...))
		l.prev, l.cur = l.cur, l.prev[:0]
		p = p[i+1:]
	}
}

func keepLast(b []byte) []byte {
	if len(b) <= maxLineMemory {
		return b
	}
	return append(b[:0], b[len(b)-maxLineMemory:]...)
}

func (l *lastLine) errorLine() string {
	line := l.cur
	if len(line) == 0 {
		line = l.prev
	}
	if i := bytes.Index(line, []byte(dirproto.ErrorMarker)); i >= 0 {
		line = line[i:]
	}
	return strings.TrimSpace(string(line))
}
