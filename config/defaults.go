// =============================================================================
// 📦 swarmflow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "github.com/BaSui01/swarmflow/agent/persistence"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Team:      DefaultTeamConfig(),
		Store:     persistence.DefaultStoreConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultTeamConfig 返回默认团队配置
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		MaxTurns:       0,
		EmitTeamEvents: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "swarmflow",
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "swarmflow",
		SampleRate:   0.1,
	}
}
