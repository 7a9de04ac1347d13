// Package health provides the client-side shapes of the API health responses.
package health

// Response represents the /health liveness response.
type Response struct {
	Status    string `json:"status" yaml:"status"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Data      struct {
		Service   string `json:"service" yaml:"service"`
		StartedAt string `json:"started_at" yaml:"started_at"`
		Uptime    string `json:"uptime" yaml:"uptime"`
		UptimeSec int64  `json:"uptime_sec" yaml:"uptime_sec"`
	} `json:"data" yaml:"data"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ReadyResponse represents the /health/ready readiness response.
type ReadyResponse struct {
	Status    string `json:"status" yaml:"status"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Data      struct {
		Root         string `json:"root" yaml:"root"`
		Files        int    `json:"files" yaml:"files"`
		Bytes        int64  `json:"bytes" yaml:"bytes"`
		TransferUnit int    `json:"transfer_unit" yaml:"transfer_unit"`
		Latency      string `json:"latency" yaml:"latency"`
	} `json:"data" yaml:"data"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Healthy reports whether the server answered with a healthy status.
func (r *ReadyResponse) Healthy() bool {
	return r.Status == "healthy"
}
