// =============================================================================
// 📦 FlowKit 工作流定义加载器
// =============================================================================
// 从 YAML 定义构建工作流组合，支持引用已注册的工作流
//
// 使用方法:
//
//	reg := registry.New()
//	reg.Register("charge", chargeWorkflow)
//	loader := registry.NewLoader(reg, logger)
//	if err := loader.LoadFile("workflows.yaml"); err != nil { ... }
//
// 叶子节点通过 ref 引用注册表中的工作流，组合节点递归构建
// =============================================================================
package registry

import (
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/flowkit/ratelimit"
	"github.com/BaSui01/flowkit/types"
	"github.com/BaSui01/flowkit/workflow"
)

// Document 是 YAML 定义文件的顶层结构
type Document struct {
	Workflows []*Definition `yaml:"workflows"`
}

// Definition 描述一个工作流节点
type Definition struct {
	// 名称（顶层定义必填，注册到注册表时使用）
	Name string `yaml:"name"`
	// 类型: ref, sequential, parallel, fallback, repeat, foreach, ratelimited, timeout
	Type string `yaml:"type"`
	// Ref 引用注册表中已有的工作流（type 为 ref 时必填）
	Ref string `yaml:"ref"`
	// 子节点（sequential/parallel 使用列表，其余使用 child）
	Children []*Definition `yaml:"children"`
	Child    *Definition   `yaml:"child"`

	// parallel 配置
	FailFast     bool `yaml:"fail_fast"`
	ShareContext bool `yaml:"share_context"`

	// fallback 配置
	Primary   *Definition `yaml:"primary"`
	Secondary *Definition `yaml:"secondary"`

	// repeat / foreach 配置
	Times    int    `yaml:"times"`
	IndexKey string `yaml:"index_key"`
	ItemsKey string `yaml:"items_key"`
	ItemKey  string `yaml:"item_key"`

	// timeout 配置（Go 时长字符串，如 "1s"、"250ms"）
	Timeout time.Duration `yaml:"timeout"`

	// ratelimited 配置
	Limiter *LimiterDefinition `yaml:"limiter"`
}

// LimiterDefinition 描述限流器配置
type LimiterDefinition struct {
	// 算法: fixed_window, sliding_window, token_bucket, leaky_bucket, xrate
	Algorithm string `yaml:"algorithm"`
	// 容量（窗口内最大许可数或桶容量）
	Capacity int `yaml:"capacity"`
	// 速率（token_bucket 补充速率 / leaky_bucket 漏出速率 / xrate 事件速率，每秒）
	Rate float64 `yaml:"rate"`
	// 窗口长度（fixed_window / sliding_window 使用，Go 时长字符串）
	Window time.Duration `yaml:"window"`
}

// Loader 从 YAML 定义构建工作流并注册
type Loader struct {
	registry *Registry
	logger   *zap.Logger
}

// NewLoader 创建定义加载器，logger 为 nil 时不输出日志
func NewLoader(registry *Registry, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{registry: registry, logger: logger}
}

// LoadFile 读取 YAML 文件并注册其中的所有工作流定义
func (l *Loader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Errorf(types.ErrInvalidConfig, "registry: read definitions: %v", err)
	}
	return l.LoadBytes(data)
}

// LoadBytes 解析 YAML 定义并注册其中的所有工作流
// 定义按文档顺序构建，靠后的定义可以通过 ref 引用靠前的定义
func (l *Loader) LoadBytes(data []byte) error {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Errorf(types.ErrInvalidConfig, "registry: parse definitions: %v", err)
	}

	for _, def := range doc.Workflows {
		if def.Name == "" {
			return types.NewError(types.ErrInvalidConfig, "registry: top-level definition missing name")
		}
		w, err := l.Build(def)
		if err != nil {
			return err
		}
		if err := l.registry.Register(def.Name, w); err != nil {
			return err
		}
		l.logger.Info("registered workflow from definition",
			zap.String("name", def.Name),
			zap.String("type", def.Type))
	}
	return nil
}

// Build 递归构建一个定义节点
func (l *Loader) Build(def *Definition) (workflow.Workflow, error) {
	if def == nil {
		return nil, types.NewError(types.ErrInvalidConfig, "registry: nil definition")
	}

	switch def.Type {
	case "ref":
		if def.Ref == "" {
			return nil, types.NewError(types.ErrInvalidConfig, "registry: ref definition missing ref")
		}
		return l.registry.Lookup(def.Ref)

	case "sequential":
		children, err := l.buildChildren(def.Children)
		if err != nil {
			return nil, err
		}
		return workflow.NewSequential(def.Name, children, workflow.WithLogger(l.logger))

	case "parallel":
		children, err := l.buildChildren(def.Children)
		if err != nil {
			return nil, err
		}
		cfg := workflow.ParallelConfig{FailFast: def.FailFast, ShareContext: def.ShareContext}
		return workflow.NewParallel(def.Name, cfg, children, workflow.WithLogger(l.logger))

	case "fallback":
		primary, err := l.Build(def.Primary)
		if err != nil {
			return nil, err
		}
		secondary, err := l.Build(def.Secondary)
		if err != nil {
			return nil, err
		}
		return workflow.NewFallback(def.Name, primary, secondary, workflow.WithLogger(l.logger))

	case "repeat":
		child, err := l.Build(def.Child)
		if err != nil {
			return nil, err
		}
		return workflow.NewRepeat(def.Name, child, def.Times, def.IndexKey, workflow.WithLogger(l.logger))

	case "foreach":
		child, err := l.Build(def.Child)
		if err != nil {
			return nil, err
		}
		return workflow.NewForEach(def.Name, child, def.ItemsKey, def.ItemKey, def.IndexKey, workflow.WithLogger(l.logger))

	case "ratelimited":
		child, err := l.Build(def.Child)
		if err != nil {
			return nil, err
		}
		limiter, err := buildLimiter(def.Limiter)
		if err != nil {
			return nil, err
		}
		return workflow.NewRateLimited(def.Name, limiter, child, workflow.WithLogger(l.logger))

	case "timeout":
		child, err := l.Build(def.Child)
		if err != nil {
			return nil, err
		}
		return workflow.NewTimeout(def.Name, def.Timeout, child, workflow.WithLogger(l.logger))

	default:
		return nil, types.Errorf(types.ErrInvalidConfig, "registry: unknown definition type %q", def.Type)
	}
}

func (l *Loader) buildChildren(defs []*Definition) ([]workflow.Workflow, error) {
	children := make([]workflow.Workflow, 0, len(defs))
	for _, def := range defs {
		child, err := l.Build(def)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// buildLimiter 根据定义构建限流器
func buildLimiter(def *LimiterDefinition) (ratelimit.Limiter, error) {
	if def == nil {
		return nil, types.NewError(types.ErrInvalidConfig, "registry: ratelimited definition missing limiter")
	}
	switch def.Algorithm {
	case "fixed_window":
		return ratelimit.NewFixedWindow(def.Capacity, def.Window)
	case "sliding_window":
		return ratelimit.NewSlidingWindow(def.Capacity, def.Window)
	case "token_bucket":
		return ratelimit.NewTokenBucket(def.Capacity, def.Rate)
	case "leaky_bucket":
		return ratelimit.NewLeakyBucket(def.Capacity, def.Rate)
	case "xrate":
		return ratelimit.NewXRate(def.Rate, def.Capacity)
	default:
		return nil, types.Errorf(types.ErrInvalidConfig, "registry: unknown limiter algorithm %q", def.Algorithm)
	}
}
