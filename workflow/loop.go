package workflow

import (
	"context"
	"reflect"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// DefaultIterationKey Repeat 默认的迭代序号变量名
const DefaultIterationKey = "iteration"

// Repeat 固定次数迭代工作流
// 执行子工作流恰好 times 次，0 起始的迭代序号写入 Context；
// times <= 0 是合法的空操作；首次失败即停止
type Repeat struct {
	base
	child    Workflow
	times    int
	indexKey string
}

// NewRepeat 创建固定次数迭代工作流
// indexKey 为空时使用 DefaultIterationKey
func NewRepeat(name string, child Workflow, times int, indexKey string, opts ...Option) (*Repeat, error) {
	if child == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: child is required", name)
	}
	if indexKey == "" {
		indexKey = DefaultIterationKey
	}
	return &Repeat{
		base:     newBase(name, TypeRepeat, opts...),
		child:    child,
		times:    times,
		indexKey: indexKey,
	}, nil
}

// Execute 执行迭代
func (w *Repeat) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		for i := 0; i < w.times; i++ {
			if err := ctx.Err(); err != nil {
				return Failure(start, cancelled(w.name, err))
			}

			wc.Put(w.indexKey, i)
			res := w.child.Execute(ctx, wc)
			if res.Failed() {
				return res
			}
		}
		return Success(start)
	})
}

// Children 返回迭代的子工作流
func (w *Repeat) Children() []Workflow {
	return []Workflow{w.child}
}

// ForEach 集合遍历工作流
// 从 Context 读取 itemsKey 指向的集合，按自然顺序逐项执行子工作流，
// 每次迭代把当前项写入 itemKey（以及可选的序号写入 indexKey）。
// 集合缺失或为空时直接成功；非切片/数组值属于配置错误，以失败结果呈现
type ForEach struct {
	base
	child    Workflow
	itemsKey string
	itemKey  string
	indexKey string // 为空时不绑定序号
}

// NewForEach 创建集合遍历工作流
func NewForEach(name string, child Workflow, itemsKey, itemKey, indexKey string, opts ...Option) (*ForEach, error) {
	if child == nil {
		return nil, types.Errorf(types.ErrMissingChild, "workflow %s: child is required", name)
	}
	if itemsKey == "" {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: itemsKey is required", name)
	}
	if itemKey == "" {
		return nil, types.Errorf(types.ErrInvalidConfig, "workflow %s: itemKey is required", name)
	}
	return &ForEach{
		base:     newBase(name, TypeForEach, opts...),
		child:    child,
		itemsKey: itemsKey,
		itemKey:  itemKey,
		indexKey: indexKey,
	}, nil
}

// Execute 执行遍历
func (w *ForEach) Execute(ctx context.Context, wc *Context) *Result {
	return Run(wc, w.name, func(start time.Time) *Result {
		value, ok := wc.Get(w.itemsKey)
		if !ok || value == nil {
			return Success(start)
		}

		items := reflect.ValueOf(value)
		switch items.Kind() {
		case reflect.Slice, reflect.Array:
		default:
			return Failure(start, types.Errorf(types.ErrBadCollection,
				"key %q holds %T, expected a slice or array", w.itemsKey, value).WithWorkflow(w.name))
		}

		for i := 0; i < items.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return Failure(start, cancelled(w.name, err))
			}

			wc.Put(w.itemKey, items.Index(i).Interface())
			if w.indexKey != "" {
				wc.Put(w.indexKey, i)
			}

			res := w.child.Execute(ctx, wc)
			if res.Failed() {
				return res
			}
		}
		return Success(start)
	})
}

// Children 返回遍历的子工作流
func (w *ForEach) Children() []Workflow {
	return []Workflow{w.child}
}
