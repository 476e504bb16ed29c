// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
# 概述

包 swarm 实现基于交接（handoff）的多智能体轮次路由。团队中的首位
参与者先发言；此后由最近一条 HandoffMessage 的目标接管发言权，
若没有交接消息则当前发言者继续发言。发言权只由显式交接决定，
不做任何基于内容的选择。

# 核心类型

  - Registry — 有序、不可变的参与者集合，首位参与者必须能产出 HandoffMessage
  - Thread — 团队与管理器共享的仅追加消息线程
  - Manager — 轮次状态机：ValidateGroupState、SelectSpeaker、Reset、SaveState、LoadState
  - ManagerState — 持久化文档 {message_thread, current_turn, current_speaker}
  - Team — 组装参与者、终止条件与管理器，并驱动 Run 循环

# 错误约定

  - 交接目标不存在：types.ErrInvalidHandoffTarget
  - 团队配置非法：types.ErrInvalidTeamConfiguration
  - 状态无法还原：types.ErrDeserialization，原有状态保持不变
  - SelectSpeaker 选中未注册的目标属于内部不变量被破坏，直接 panic

# 并发

Manager 不是并发安全的。Team 以互斥锁串行化 Run、Reset、SaveState
与 LoadState；运行期间再次调用 Run、Reset 或 LoadState 返回
types.ErrTeamRunning。

# 典型用法

	team, err := swarm.NewTeam([]swarm.ChatAgent{alice, bob},
		swarm.WithTermination(cond),
		swarm.WithMaxTurns(10),
	)
	result, err := team.Run(ctx, messages.NewTextMessage("user", "hi"))
*/
package swarm
