// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 提供基于 GORM 的数据库连接池管理，支持健康检查与事务重试，
为 SQL 状态存储提供底层连接。

# 核心类型

  - PoolManager：持有 GORM DB 与底层 sql.DB，提供 DB(ctx)、Ping、
    Stats、Close 等生命周期方法。
  - PoolConfig：最大空闲连接数、最大打开连接数、连接最大生命周期
    与健康检查间隔。
  - TransactionFunc：事务回调函数类型。

# 主要能力

  - 健康检查：后台定时 PingContext 探活，Close 时停止。
  - 事务管理：WithTransaction 单次执行，WithTransactionRetry 对死锁、
    序列化失败与 SQLite 锁冲突按指数退避重试。
*/
package database
