// Copyright 2026 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 swarmflow 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 状态存储: NewRedisStateStore（miniredis）与 NewFileStateStore（临时目录）
  - 断言工具: AssertMessagesEqual 按类型、发送者、文本与交接目标比较消息

# 使用示例

	ctx := testutil.TestContext(t)
	store := testutil.NewRedisStateStore(t)
	require.NoError(t, team.SaveTo(ctx, store, "conv-1"))
*/
package testutil
