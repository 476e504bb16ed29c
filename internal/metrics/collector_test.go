package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollectorWithRegistry("test", prometheus.NewRegistry(), zap.NewNop())
}

// =============================================================================
// 🧪 Collector 测试
// =============================================================================

func TestNewCollectorWithRegistry(t *testing.T) {
	collector := newTestCollector(t)

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.speakerSelections)
	assert.NotNil(t, collector.handoffsTotal)
	assert.NotNil(t, collector.turnsTotal)
	assert.NotNil(t, collector.runsTotal)
	assert.NotNil(t, collector.stateOpsTotal)
}

func TestNewCollectorWithRegistry_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollectorWithRegistry("dup", reg, nil)

	assert.Panics(t, func() {
		NewCollectorWithRegistry("dup", reg, nil)
	})
}

func TestCollector_RecordSpeakerSelection(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordSpeakerSelection("Swarm", "Bob", true)
	collector.RecordSpeakerSelection("Swarm", "Bob", false)
	collector.RecordSpeakerSelection("Swarm", "Bob", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.speakerSelections.WithLabelValues("Swarm", "Bob", "handoff")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.speakerSelections.WithLabelValues("Swarm", "Bob", "keep")))
}

func TestCollector_RecordHandoffAndValidation(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordHandoff("Swarm", "Alice", "Bob")
	collector.RecordValidationFailure("Swarm")
	collector.RecordValidationFailure("Swarm")

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.handoffsTotal.WithLabelValues("Swarm", "Alice", "Bob")))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.validationFailures.WithLabelValues("Swarm")))
}

func TestCollector_RecordRun(t *testing.T) {
	collector := newTestCollector(t)

	collector.RunStarted("Swarm")
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.activeRuns.WithLabelValues("Swarm")))

	collector.RecordTurn("Swarm", "Alice", "success", 10*time.Millisecond)
	collector.RecordThreadLength("Swarm", 3)
	collector.RecordRun("Swarm", "termination", 50*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(collector.activeRuns.WithLabelValues("Swarm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.runsTotal.WithLabelValues("Swarm", "termination")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.turnsTotal.WithLabelValues("Swarm", "Alice", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.threadLength.WithLabelValues("Swarm")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.turnDuration))
}

func TestCollector_RecordStateOperation(t *testing.T) {
	collector := newTestCollector(t)

	collector.RecordStateOperation("save", nil, time.Millisecond)
	collector.RecordStateOperation("load", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stateOpsTotal.WithLabelValues("save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.stateOpsTotal.WithLabelValues("load", "error")))
}

func TestCollector_NilSafe(t *testing.T) {
	var collector *Collector
	require.NotPanics(t, func() {
		collector.RecordSpeakerSelection("t", "s", true)
		collector.RecordHandoff("t", "a", "b")
		collector.RecordValidationFailure("t")
		collector.RecordTurn("t", "s", "success", time.Second)
		collector.RunStarted("t")
		collector.RecordRun("t", "error", time.Second)
		collector.RecordThreadLength("t", 1)
		collector.RecordStateOperation("save", nil, time.Second)
	})
}
