package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "speedsolve")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "CreateAttempt", "AttemptService")
	m.RecordOperationSuccess(ctx, "CreateAttempt", "AttemptService")
	m.RecordOperationSuccess(ctx, "CreateAttempt", "AttemptService")
	m.RecordOperationDuration(ctx, "CreateAttempt", "AttemptService", 20*time.Millisecond)
	m.RecordAttemptsCreated(ctx, 3)
	m.RecordLedgerSize(ctx, 7)

	pm := m.(*prometheusMetrics)
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.operations.WithLabelValues("AttemptService", "CreateAttempt", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.created))

	_, err = NewPrometheus(reg, "speedsolve")
	assert.Error(t, err, "registering twice on the same registry must fail")
}
