package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dirserve/pkg/metrics"
)

func TestNewServerMetricsDisabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewServerMetrics())
}

func TestServerMetrics(t *testing.T) {
	metrics.Reset()
	t.Cleanup(metrics.Reset)
	metrics.InitRegistry()

	m := NewServerMetrics()
	require.NotNil(t, m)
	sm := m.(*serverMetrics)

	m.RecordCommand("GET", "ok", 3*time.Millisecond)
	m.RecordCommand("GET", "missing", time.Millisecond)
	m.RecordCommand("LIST", "ok", time.Millisecond)
	m.RecordBytesSent("GET", 120)
	m.RecordBytesSent("GET", 0)
	m.RecordEntriesListed(4)

	assert.Equal(t, 1.0, testutil.ToFloat64(sm.commandsTotal.WithLabelValues("GET", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.commandsTotal.WithLabelValues("GET", "missing")))
	assert.Equal(t, 120.0, testutil.ToFloat64(sm.bytesSent.WithLabelValues("GET")))
	assert.Equal(t, 2, testutil.CollectAndCount(sm.commandDuration))

	m.RecordConnectionAccepted()
	m.RecordConnectionAccepted()
	m.RecordConnectionClosed()
	m.RecordConnectionForceClosed()
	m.SetActiveConnections(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(sm.connsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.connsClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.connsForceClosed))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.activeConns))
}
