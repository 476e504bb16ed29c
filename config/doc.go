// Package config 提供 swarmflow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量（前缀 SWARMFLOW）的顺序加载，
// 覆盖团队运行默认值、状态存储后端、Prometheus 指标、日志与遥测。
package config
