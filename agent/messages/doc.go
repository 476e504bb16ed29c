// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package messages 定义会话线程中的消息类型及其可扩展的反序列化工厂。

# 核心模型

  - Message：所有消息的接口，提供 Kind / Sender / Text / Validate
  - TextMessage：普通文本输出
  - HandoffMessage：显式交接指令，Target 指定下一位发言者
  - StopMessage：运行结束信号
  - ToolCallSummaryMessage：工具调用摘要

# 序列化

每条消息以 Serialized{kind, payload} 的形式持久化，保留消息种类。
Factory 以 kind 为键维护构造函数表，内置种类在构建时注册，
自定义种类通过 KindDescriptor 追加。未知的 kind 直接失败，不做默认回退。
*/
package messages
