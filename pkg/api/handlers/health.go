package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/dirserve/pkg/servedroot"
)

// ServedRoot is what the readiness probe needs from the served directory.
type ServedRoot interface {
	List(ctx context.Context) ([]servedroot.Entry, error)
	Path() string
	TransferUnit() int
}

// HealthHandler handles health check endpoints.
//
//   - Liveness: is the process answering?
//   - Readiness: can the served root be listed right now?
type HealthHandler struct {
	root      ServedRoot
	startedAt time.Time
}

// NewHealthHandler creates a new health handler. A nil root makes the
// readiness probe fail.
func NewHealthHandler(root ServedRoot) *HealthHandler {
	return &HealthHandler{root: root, startedAt: time.Now()}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startedAt)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "dirserve",
		"started_at": h.startedAt.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready. It lists the served root the same
// way a LIST command does and answers 503 when that fails.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.root == nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("served root not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	start := time.Now()
	entries, err := h.root.List(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"root":          h.root.Path(),
		"files":         len(entries),
		"bytes":         total,
		"transfer_unit": h.root.TransferUnit(),
		"latency":       time.Since(start).String(),
	}))
}
