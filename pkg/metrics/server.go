package metrics

import (
	"time"
)

// ServerMetrics provides observability for the directory server.
//
// Pass nil to disable collection:
//
//	m := prometheus.NewServerMetrics() // nil unless InitRegistry was called
//	adapter := dirserve.New(cfg, root, m)
type ServerMetrics interface {
	// RecordCommand records a served command.
	//
	// Parameters:
	//   - verb: LIST, GET, EXIT or UNKNOWN
	//   - outcome: "ok", "missing", "invalid", "interrupted", "unavailable"
	//     or "error" (connection dropped)
	//   - duration: time from command read to response written
	RecordCommand(verb string, outcome string, duration time.Duration)

	// RecordBytesSent records bytes written to the client for a verb,
	// frames included.
	RecordBytesSent(verb string, bytes int64)

	// RecordEntriesListed records the size of a directory listing.
	RecordEntriesListed(entries int)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed connections counter.
	RecordConnectionClosed()

	// RecordConnectionForceClosed increments the counter of connections
	// closed after the shutdown timeout.
	RecordConnectionForceClosed()
}
