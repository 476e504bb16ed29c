// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 swarmflow 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 agent/swarm、
agent/persistence、agent/declarative 等上层模块提供统一的错误契约。

# 核心类型

  - Error / ErrorCode — 结构化错误体系，含 Retryable 标记与 Cause 链
  - ErrInvalidHandoffTarget     — 交接目标不在参与者集合中
  - ErrInvalidTeamConfiguration — 团队构建时不满足约束
  - ErrDeserialization          — 持久化状态无法还原
  - ErrUnknownMessageKind       — 消息类型未注册，作为 ErrDeserialization 的 Cause 出现

# 主要能力

  - 错误工具链：WrapError / AsError / IsErrorCode / IsRetryable / GetErrorCode
*/
package types
