// Copyright (c) FlowKit Authors.
// Licensed under the MIT License.

/*
Package workflow 提供进程内工作流编排与执行引擎的核心抽象。

# 概述

workflow 包实现了 FlowKit 的组合式工作流系统：调用方通过构造函数组装
不可变的工作流树，Execute 递归驱动子工作流，在共享 Context 上读写状态，
并返回 Result。业务失败永远不会以 panic 或 Go error 的形式抛出 Execute，
而是被捕获进 Result{Status: FAILED, Err: ...}。

# 核心接口与类型

  - Workflow        — 工作流接口 Execute(ctx, wc) *Result + Name + Type
  - Container       — 容器工作流接口（暴露直接子节点，供树形诊断使用）
  - Context         — 线程安全的共享键值执行状态（支持作用域与快照复制）
  - Result          — 不可变执行结果（状态、错误、起止时间）
  - Listener        — 执行生命周期监听器（OnStart / OnSuccess / OnFailure）
  - Task / TaskDescriptor / TaskExecutor — 工作单元及其重试/超时策略绑定

# 组合变体

  - Sequential      — 顺序执行，首个失败即停止
  - Parallel        — 并行扇出（ExecutionStrategy 提交 + failFast/shareContext）
  - Conditional     — 谓词分支
  - Routing         — 动态分支（选择器 → 命名分支 + 默认分支）
  - Fallback        — 主工作流失败后执行备用工作流
  - Repeat          — 固定次数迭代，迭代序号写入 Context
  - ForEach         — 遍历 Context 中的集合，逐项执行子工作流
  - RateLimited     — 限流包装（ratelimit.Limiter 准入控制）
  - Timeout         — 整体超时包装
  - Chaos           — 故障注入包装（概率失败、延迟、错误注入）
*/
package workflow
