// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package main 提供 swarmflow 命令行程序入口。

# 概述

cmd/swarmflow 加载声明式团队定义（YAML/JSON），按交接消息路由
参与者轮次运行 Swarm 对话，并在配置的状态存储中保存检查点，
以便在交接给团队外部（例如 user）暂停后恢复对话。

# 子命令

  - validate — 构建团队并打印参与者，首位参与者即初始发言者
  - run      — 运行或恢复会话；--handoff-to 以交接消息恢复暂停的对话
  - state    — show / list / delete 已保存的管理器状态
  - version  — 打印构建注入的版本信息

# 主要能力

  - 配置加载：默认值 → YAML 文件 → SWARMFLOW_ 前缀环境变量
  - 结构化日志（zap）与 OpenTelemetry 链路追踪
  - Prometheus 指标：--metrics-addr 在运行期间暴露 /metrics
  - 优雅退出：SIGINT/SIGTERM 取消正在进行的运行
*/
package main
