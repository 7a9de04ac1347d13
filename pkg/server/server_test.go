package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dirserve/internal/protocol/dirproto"
	"github.com/marmos91/dirserve/pkg/adapter/dirserve"
	"github.com/marmos91/dirserve/pkg/api"
	"github.com/marmos91/dirserve/pkg/servedroot"
)

// stubAdapter blocks until ctx is done, or fails immediately with err.
type stubAdapter struct {
	err     error
	stopped chan struct{}
}

func (s *stubAdapter) Serve(ctx context.Context) error {
	defer close(s.stopped)
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func (s *stubAdapter) Stop(context.Context) error { return nil }
func (s *stubAdapter) Protocol() string          { return "STUB" }
func (s *stubAdapter) Port() int                 { return 0 }

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port
}

func wait(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func TestServeEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/a.txt", []byte("abc"), 0644))
	root := servedroot.New(fs, "/srv")

	a := dirserve.New(dirserve.Config{BindAddress: "127.0.0.1"}, root, nil)
	a.Config.Port = 0
	apiServer := api.NewServer(api.APIConfig{BindAddress: "127.0.0.1", Port: freePort(t)}, root)

	s := New(a, apiServer)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()

	conn, err := net.Dial("tcp", a.GetListenerAddr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	r := bufio.NewReader(conn)
	welcome := make([]byte, len(dirproto.Welcome))
	_, err = io.ReadFull(r, welcome)
	require.NoError(t, err)
	assert.Equal(t, dirproto.Welcome, string(welcome))

	resp, err := http.Get("http://" + apiServer.Addr() + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, wait(t, errCh))

	assert.Error(t, s.Serve(context.Background()), "Serve runs once")
}

func TestServeAdapterFailureStopsAPI(t *testing.T) {
	stub := &stubAdapter{err: errors.New("bind failed"), stopped: make(chan struct{})}
	apiServer := api.NewServer(api.APIConfig{BindAddress: "127.0.0.1", Port: freePort(t)}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- New(stub, apiServer).Serve(context.Background()) }()

	err := wait(t, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUB adapter: bind failed")
}

func TestServeAPIFailureStopsAdapter(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = occupied.Close() }()

	stub := &stubAdapter{stopped: make(chan struct{})}
	apiServer := api.NewServer(api.APIConfig{
		BindAddress: "127.0.0.1",
		Port:        occupied.Addr().(*net.TCPAddr).Port,
	}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- New(stub, apiServer).Serve(context.Background()) }()

	err = wait(t, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server failed")

	select {
	case <-stub.stopped:
	default:
		t.Fatal("adapter still running")
	}
}

func TestServeWithoutAPI(t *testing.T) {
	stub := &stubAdapter{stopped: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- New(stub, nil).Serve(ctx) }()

	cancel()
	assert.NoError(t, wait(t, errCh))
}
