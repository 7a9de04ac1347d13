// Package adapter provides the TCP lifecycle shared by protocol servers:
// listening, accepting, per-connection goroutines, connection limits and
// graceful shutdown. A protocol plugs in through ConnectionFactory.
package adapter

import (
	"context"
)

// Adapter is a protocol server managed by the dirserve process.
//
// Lifecycle:
//  1. Creation with protocol-specific configuration
//  2. Serve() binds the listener and blocks until shutdown
//  3. Stop() (or cancelling Serve's context) drains connections
//
// Stop may be called concurrently with Serve and more than once.
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is
	// cancelled or the listener cannot be created.
	//
	// Returns nil after a graceful shutdown, or an error if binding failed
	// or connections had to be force-closed.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown and waits for active connections
	// until ctx is done.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logs and metrics.
	Protocol() string

	// Port returns the configured TCP port.
	Port() int
}
