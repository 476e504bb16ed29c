// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
# 概述

包 termination 提供团队运行的终止条件。运行循环在每批新消息追加到
线程后调用 Condition.Check，条件满足时返回 StopMessage 并结束本次运行。

# 内置条件

  - MaxMessageTermination — 观察到的消息数达到上限时终止
  - HandoffTermination — 出现指向指定目标（如 "user"）的交接时终止
  - TextMentionTermination — 消息文本包含指定短语时终止，可限定发送者
  - OrTermination — 任一子条件触发即终止

# 声明式构建

Register 将上述条件注册到 declarative.ComponentRegistry，
所有条件均实现 declarative.Component，可导出为 ComponentModel 后重新构建。
*/
package termination
