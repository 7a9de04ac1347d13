// Package dirserve is the protocol adapter that serves a directory over the
// line-oriented LIST / GET / EXIT protocol.
package dirserve

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/pkg/adapter"
	"github.com/marmos91/dirserve/pkg/metrics"
	"github.com/marmos91/dirserve/pkg/servedroot"
)

// Protocol is the adapter name used in logs.
const Protocol = "DIRSERVE"

// Adapter implements adapter.Adapter for the directory protocol.
//
// Adapter embeds BaseAdapter for the TCP lifecycle (listener, shutdown,
// connection tracking, connection limit). Each accepted connection gets its
// own Connection running the command dispatcher. Connections share nothing
// but the immutable root, configuration and metrics sink.
type Adapter struct {
	*adapter.BaseAdapter

	config  Config
	root    *servedroot.Root
	metrics metrics.ServerMetrics
}

// New creates a stopped Adapter serving root. m may be nil.
//
// Zero values in config are replaced with defaults. An invalid config
// panics, as it indicates a programmer error: callers load and validate
// configuration before constructing adapters.
func New(config Config, root *servedroot.Root, m metrics.ServerMetrics) *Adapter {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		panic(fmt.Sprintf("invalid %s config: %v", Protocol, err))
	}

	base := adapter.NewBaseAdapter(adapter.BaseConfig{
		BindAddress:        config.BindAddress,
		Port:               config.Port,
		MaxConnections:     config.MaxConnections,
		ShutdownTimeout:    config.Timeouts.Shutdown,
		MetricsLogInterval: config.MetricsLogInterval,
	}, Protocol)
	if m != nil {
		base.Metrics = m
	}

	return &Adapter{
		BaseAdapter: base,
		config:      config,
		root:        root,
		metrics:     m,
	}
}

// Serve accepts connections until ctx is cancelled or Stop is called.
func (a *Adapter) Serve(ctx context.Context) error {
	logger.Info("Serving directory",
		logger.KeyRoot, a.root.Path(),
		logger.KeyTransferUnit, a.root.TransferUnit())
	return a.ServeWithFactory(ctx, a)
}

// NewConnection implements adapter.ConnectionFactory.
func (a *Adapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	return NewConnection(a, conn, uuid.NewString())
}

// Root returns the served root.
func (a *Adapter) Root() *servedroot.Root {
	return a.root
}
