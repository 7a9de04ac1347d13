package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys consistently so
// server logs can be grepped and aggregated by connection or command.
const (
	KeyTraceID = "trace_id"

	KeyConnectionID = "connection_id"
	KeyClientAddr   = "client_addr"
	KeyActive       = "active"

	KeyCommand  = "command"
	KeyFilename = "filename"
	KeyState    = "state"
	KeyOutcome  = "outcome"

	KeyRoot         = "root"
	KeyEntries      = "entries"
	KeyBytes        = "bytes"
	KeyChunks       = "chunks"
	KeyTransferUnit = "transfer_unit"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// ConnectionID returns a slog.Attr for the connection identifier
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// ClientAddr returns a slog.Attr for the remote address
func ClientAddr(addr string) slog.Attr {
	return slog.String(KeyClientAddr, addr)
}

// Command returns a slog.Attr for the protocol verb
func Command(verb string) slog.Attr {
	return slog.String(KeyCommand, verb)
}

// Filename returns a slog.Attr for a requested filename
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// State returns a slog.Attr for a dispatcher state
func State(s string) slog.Attr {
	return slog.String(KeyState, s)
}

// Bytes returns a slog.Attr for a byte count
func Bytes(n int64) slog.Attr {
	return slog.Int64(KeyBytes, n)
}

// Entries returns a slog.Attr for a number of listing entries
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which the handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
