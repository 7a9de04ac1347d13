package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	originalFormat, _ := currentFormat.Load().(string)
	originalLevel := Level(currentLevel.Load())

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		currentFormat.Store(originalFormat)
		currentLevel.Store(int32(originalLevel))
		reconfigure()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		visible  []string
		filtered []string
	}{
		{"DEBUG", []string{"debug message", "info message", "warn message", "error message"}, nil},
		{"INFO", []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{"WARN", []string{"warn message", "error message"}, []string{"debug message", "info message"}},
		{"ERROR", []string{"error message"}, []string{"debug message", "info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf, cleanup := captureOutput()
			defer cleanup()

			SetLevel(tt.level)
			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, msg := range tt.visible {
				assert.Contains(t, out, msg)
			}
			for _, msg := range tt.filtered {
				assert.NotContains(t, out, msg)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("dEbUg")
		Debug("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("IgnoresInvalidValues", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("LOUD")
		Debug("hidden")
		Info("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
	})
}

func TestTextFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	Info("New connection", KeyClientAddr, "127.0.0.1:5000", KeyFilename, "my file.txt", KeyBytes, int64(42))

	out := buf.String()
	assert.Contains(t, out, "[INFO] New connection")
	assert.Contains(t, out, "client_addr=127.0.0.1:5000")
	assert.Contains(t, out, `filename="my file.txt"`)
	assert.Contains(t, out, "bytes=42")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTextFormatGroups(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	With("server", "dirserve").WithGroup("conn").Info("grouped", "id", "abc")

	out := buf.String()
	assert.Contains(t, out, "server=dirserve")
	assert.Contains(t, out, "conn.id=abc")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	Info("json message", KeyCommand, "LIST", KeyEntries, 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "json message", record["msg"])
	assert.Equal(t, "LIST", record[KeyCommand])
	assert.EqualValues(t, 3, record[KeyEntries])
}

func TestContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	lc := NewLogContext("conn-1", "10.0.0.1:4242").WithCommand("GET", "a.txt")
	ctx := WithContext(context.Background(), lc)

	DebugCtx(ctx, "streaming")

	out := buf.String()
	assert.Contains(t, out, "connection_id=conn-1")
	assert.Contains(t, out, "client_addr=10.0.0.1:4242")
	assert.Contains(t, out, "command=GET")
	assert.Contains(t, out, "filename=a.txt")

	// Field order: context fields are prepended before call-site args.
	buf.Reset()
	InfoCtx(ctx, "done", KeyBytes, int64(3))
	out = buf.String()
	assert.Less(t, strings.Index(out, "connection_id"), strings.Index(out, "bytes=3"))
}

func TestContextWithoutLogContext(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	InfoCtx(context.Background(), "plain", "k", "v")
	assert.Contains(t, buf.String(), "k=v")
	assert.NotContains(t, buf.String(), KeyConnectionID)
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("c", "addr")
	cmd := lc.WithCommand("LIST", "")

	assert.Equal(t, "", lc.Command, "original must not be mutated")
	assert.Equal(t, "LIST", cmd.Command)
	assert.Equal(t, "c", cmd.ConnectionID)

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.WithCommand("LIST", ""))
	assert.Zero(t, nilCtx.DurationMs())
}

func TestErrAttr(t *testing.T) {
	assert.True(t, Err(nil).Equal(slog.Attr{}))
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
}

func TestInitWithWriter(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)
	Info("skipped")
	Warn("kept")

	assert.NotContains(t, buf.String(), "skipped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitLogFile(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "dirserve.log")
	require.NoError(t, Init(Config{Level: "info", Format: "json", Output: path}))
	Info("to file", KeyRoot, "/srv")
	require.NoError(t, Close())
	assert.NoError(t, Close(), "second close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "to file", entry["msg"])
	assert.Equal(t, "/srv", entry[KeyRoot])
}

func TestInitErrors(t *testing.T) {
	_, cleanup := captureOutput()
	defer cleanup()

	err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)

	err = Init(Config{Level: "LOUD"})
	assert.ErrorContains(t, err, "unknown log level")
}
