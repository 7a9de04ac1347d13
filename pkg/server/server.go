// Package server runs the directory adapter and the HTTP API side by side
// and ties their lifetimes together.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/pkg/adapter"
	"github.com/marmos91/dirserve/pkg/api"
)

// Server owns one protocol adapter and an optional API server.
//
// Serve blocks until its context is cancelled or one component fails; a
// failure in either component shuts the other down.
type Server struct {
	adapter adapter.Adapter
	api     *api.Server

	serveOnce sync.Once
}

// New creates a server for a. apiServer may be nil.
func New(a adapter.Adapter, apiServer *api.Server) *Server {
	return &Server{adapter: a, api: apiServer}
}

// Serve starts every component and waits for all of them to stop.
//
// Returns nil after a graceful shutdown triggered by ctx, otherwise the
// first component error. Only the first call does anything.
func (s *Server) Serve(ctx context.Context) error {
	err := fmt.Errorf("server already started")
	s.serveOnce.Do(func() {
		err = s.serve(ctx)
	})
	return err
}

func (s *Server) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("Starting dirserve", "protocol", s.adapter.Protocol(), "port", s.adapter.Port())

	results := make(chan error, 2)
	running := 1

	go func() {
		if err := s.adapter.Serve(ctx); err != nil {
			results <- fmt.Errorf("%s adapter: %w", s.adapter.Protocol(), err)
			return
		}
		results <- nil
	}()

	if s.api != nil {
		running++
		go func() {
			results <- s.api.Start(ctx)
		}()
	}

	var firstErr error
	for ; running > 0; running-- {
		err := <-results
		if err == nil {
			// A component stopping on its own takes the process down too.
			cancel()
			continue
		}
		if firstErr == nil {
			firstErr = err
			logger.Error("Component failed, shutting down", logger.Err(err))
		}
		cancel()
	}

	logger.Info("dirserve stopped")
	return firstErr
}
