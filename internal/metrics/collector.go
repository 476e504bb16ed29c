// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。nil Collector 上的所有记录方法均为空操作。
type Collector struct {
	// 发言者选择指标
	speakerSelections  *prometheus.CounterVec
	handoffsTotal      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec

	// 运行指标
	turnsTotal   *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	activeRuns   *prometheus.GaugeVec
	threadLength *prometheus.GaugeVec

	// 状态持久化指标
	stateOpsTotal   *prometheus.CounterVec
	stateOpDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器，注册到 Prometheus 默认 Registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWithRegistry(namespace, prometheus.DefaultRegisterer, logger)
}

// NewCollectorWithRegistry 创建指标收集器，注册到指定 Registerer
func NewCollectorWithRegistry(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 发言者选择指标
	c.speakerSelections = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speaker_selections_total",
			Help:      "Total number of speaker selections",
		},
		[]string{"team", "speaker", "reason"}, // reason: handoff, keep
	)

	c.handoffsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Total number of handoff messages observed",
		},
		[]string{"team", "from", "to"},
	)

	c.validationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoff_validation_failures_total",
			Help:      "Total number of rejected handoff targets",
		},
		[]string{"team"},
	)

	// 运行指标
	c.turnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of participant turns",
		},
		[]string{"team", "speaker", "status"},
	)

	c.turnDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Participant turn duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"team", "speaker"},
	)

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of team runs by stop reason",
		},
		[]string{"team", "stop_reason"}, // stop_reason: termination, max_turns, error, cancelled
	)

	c.runDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Team run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"team"},
	)

	c.activeRuns = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Number of team runs in progress",
		},
		[]string{"team"},
	)

	c.threadLength = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "thread_length",
			Help:      "Number of messages in the team thread",
		},
		[]string{"team"},
	)

	// 状态持久化指标
	c.stateOpsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_operations_total",
			Help:      "Total number of manager state save/load operations",
		},
		[]string{"operation", "status"}, // operation: save, load, reset
	)

	c.stateOpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_operation_duration_seconds",
			Help:      "Manager state operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 发言者选择指标记录
// =============================================================================

// RecordSpeakerSelection 记录一次发言者选择
func (c *Collector) RecordSpeakerSelection(team, speaker string, handoff bool) {
	if c == nil {
		return
	}
	reason := "keep"
	if handoff {
		reason = "handoff"
	}
	c.speakerSelections.WithLabelValues(team, speaker, reason).Inc()
}

// RecordHandoff 记录一条交接消息
func (c *Collector) RecordHandoff(team, from, to string) {
	if c == nil {
		return
	}
	c.handoffsTotal.WithLabelValues(team, from, to).Inc()
}

// RecordValidationFailure 记录一次交接目标校验失败
func (c *Collector) RecordValidationFailure(team string) {
	if c == nil {
		return
	}
	c.validationFailures.WithLabelValues(team).Inc()
}

// =============================================================================
// 🤖 运行指标记录
// =============================================================================

// RecordTurn 记录参与者的一轮发言
func (c *Collector) RecordTurn(team, speaker, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.turnsTotal.WithLabelValues(team, speaker, status).Inc()
	c.turnDuration.WithLabelValues(team, speaker).Observe(duration.Seconds())
}

// RunStarted 记录运行开始
func (c *Collector) RunStarted(team string) {
	if c == nil {
		return
	}
	c.activeRuns.WithLabelValues(team).Inc()
}

// RecordRun 记录运行结束
func (c *Collector) RecordRun(team, stopReason string, duration time.Duration) {
	if c == nil {
		return
	}
	c.activeRuns.WithLabelValues(team).Dec()
	c.runsTotal.WithLabelValues(team, stopReason).Inc()
	c.runDuration.WithLabelValues(team).Observe(duration.Seconds())
}

// RecordThreadLength 记录线程长度
func (c *Collector) RecordThreadLength(team string, length int) {
	if c == nil {
		return
	}
	c.threadLength.WithLabelValues(team).Set(float64(length))
}

// =============================================================================
// 🗄️ 状态持久化指标记录
// =============================================================================

// RecordStateOperation 记录状态保存/加载/重置
func (c *Collector) RecordStateOperation(operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.stateOpsTotal.WithLabelValues(operation, status(err)).Inc()
	c.stateOpDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// status 将错误转换为状态标签
func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
