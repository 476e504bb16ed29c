// Copyright 2026 AgentFlow Authors
// Use of this source code is governed by the project license.

/*
# 概述

包 declarative 提供基于 YAML/JSON 的声明式 Swarm 团队定义与加载能力。

用户可通过配置文件（而非 Go 代码）定义团队：参与者列表、终止条件、
最大轮次与是否发出团队事件。本包只负责文档的解析、校验与组件构建，
不导入 agent/swarm，由 swarm.FromDefinition 组装运行中的团队。

# 核心接口

  - TeamLoader — 从文件或字节流加载 TeamDefinition，支持自动格式检测
  - ComponentRegistry — provider 名称到构建函数的映射
  - Component — 可将自身导出为 ComponentModel 的运行时对象

# 典型用法

	loader := declarative.NewYAMLLoader()
	def, err := loader.LoadFile("team.yaml")

	registry := declarative.NewComponentRegistry(logger)
	participants.Register(registry)
	termination.Register(registry)
	team, err := swarm.FromDefinition(def, registry)

# 设计约束

  - 使用 validator/v10 校验必填字段与数值范围
  - 支持 YAML (.yaml/.yml) 和 JSON (.json) 两种格式
*/
package declarative
