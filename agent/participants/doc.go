// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
包 participants 提供可直接放入 Swarm 团队的参与者实现。

ScriptedAgent 按预设脚本依次回复，文本回复生成 TextMessage，
带 handoff_to 的回复生成 HandoffMessage。配置了 handoffs 的代理
才会声明自己能产出 HandoffMessage，这是成为团队首位参与者的前提。

脚本代理不依赖任何模型调用，适用于命令行演示、声明式配置校验和测试。
Register 将 "participants.scripted" 注册到 declarative.ComponentRegistry。
*/
package participants
