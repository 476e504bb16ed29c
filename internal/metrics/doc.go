// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的 Swarm 团队指标采集能力，覆盖
发言者选择、运行与状态持久化三大维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标，使用 promauto.With
注册到调用方指定的 Registerer（默认 Registry 或测试中的独立 Registry）。
所有指标按 namespace 隔离，按 team 等 label 分组。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 向量指标。nil Collector 可安全调用，不记录任何数据。

# 主要能力

  - 选择指标：发言者选择次数（按 handoff/keep 区分）、交接消息数、
    交接目标校验失败次数。
  - 运行指标：轮次计数与耗时、运行次数（按停止原因）与耗时、
    进行中的运行数、线程长度。
  - 状态指标：save/load/reset 操作计数与耗时，按 success/error 分组。
*/
package metrics
