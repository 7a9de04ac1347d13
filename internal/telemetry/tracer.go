package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Client and file keys follow OpenTelemetry semantic
// conventions; protocol keys use the "dirserve." prefix.
const (
	AttrClientAddr = "client.address"
	AttrFilename   = "fs.filename"
	AttrSize       = "fs.size"

	AttrConnectionID = "dirserve.connection_id"
	AttrCommand      = "dirserve.command"
	AttrOutcome      = "dirserve.outcome"
	AttrBytesSent    = "dirserve.bytes_sent"
	AttrChunks       = "dirserve.chunks"
	AttrEntries      = "dirserve.entries"
	AttrTransferUnit = "dirserve.transfer_unit"
)

// Span names. One connection span parents one span per command.
const (
	SpanConnection = "dirserve.connection"
	SpanCommand    = "dirserve." // + verb
)

// StartConnectionSpan starts the span covering a client connection.
func StartConnectionSpan(ctx context.Context, connectionID, clientAddr string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanConnection,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			ConnectionID(connectionID),
			ClientAddr(clientAddr),
		),
	)
}

// StartCommandSpan starts the span for one command. filename is recorded
// only when non-empty.
func StartCommandSpan(ctx context.Context, verb, filename string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := []attribute.KeyValue{Command(verb)}
	if filename != "" {
		all = append(all, Filename(filename))
	}
	all = append(all, attrs...)

	return StartSpan(ctx, SpanCommand+verb, trace.WithAttributes(all...))
}

// ConnectionID returns an attribute for the connection identifier
func ConnectionID(id string) attribute.KeyValue {
	return attribute.String(AttrConnectionID, id)
}

// ClientAddr returns an attribute for the remote address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Command returns an attribute for the protocol verb
func Command(verb string) attribute.KeyValue {
	return attribute.String(AttrCommand, verb)
}

// Filename returns an attribute for the requested file
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Size returns an attribute for a file size
func Size(n int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, n)
}

// Outcome returns an attribute for the command outcome
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// BytesSent returns an attribute for bytes written to the client
func BytesSent(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytesSent, n)
}

// Chunks returns an attribute for the number of content chunks
func Chunks(n int) attribute.KeyValue {
	return attribute.Int(AttrChunks, n)
}

// Entries returns an attribute for the number of listed files
func Entries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// TransferUnit returns an attribute for the configured chunk size
func TransferUnit(n int) attribute.KeyValue {
	return attribute.Int(AttrTransferUnit, n)
}
