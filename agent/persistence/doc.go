// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 persistence 提供群聊管理器状态的持久化存储抽象及多后端实现。

# 概述

Swarm 团队需要在进程重启后恢复"当前轮到谁发言"。管理器状态
（消息线程、轮次计数、当前发言者）被序列化为 JSON 文档，
按会话 ID 写入 StateStore，恢复时原样读回。

# 核心接口

  - Store: 所有存储的基础接口，提供 Close 和 Ping 健康检查。
  - StateStore: 状态文档的保存、读取、删除与列举。

# 后端实现

  - Memory: 内存实现，适合开发与测试，重启后数据丢失。
  - File: 每个会话一个 JSON 文件，原子写入（临时文件 + rename）。
  - Redis: 字符串键存储文档，Set 维护会话索引，支持 TTL。
  - Badger: 嵌入式 KV 存储，按前缀扫描列举会话。
  - SQL: 基于 gorm，支持 postgres / mysql / sqlite，连接池与事务重试
    由 internal/database 提供。

# 使用方式

	store, err := persistence.NewStateStore(config)
*/
package persistence
