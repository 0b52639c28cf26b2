package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementAcceptAttempts()
	m.IncrementAcceptAttempts()
	m.IncrementAcceptSuccesses()
	m.IncrementAcceptConflicts()
	m.IncrementRequestsCreated()

	require.Equal(t, 2.0, testutil.ToFloat64(m.AcceptAttempts))
	require.Equal(t, 1.0, testutil.ToFloat64(m.AcceptSuccesses))
	require.Equal(t, 1.0, testutil.ToFloat64(m.AcceptConflicts))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsCreated))
	require.Equal(t, 0.0, testutil.ToFloat64(m.RequestsCancelled))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.IncrementAcceptAttempts()
		m.IncrementRequestsRejected()
		m.IncrementLoginFailures()
	})
}
