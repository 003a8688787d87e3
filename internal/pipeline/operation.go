package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"
)

// Event 生命周期事件名
type Event string

const (
	EventResourceBeforeCreate Event = "resource.before_create"
	EventResourceAfterCreate  Event = "resource.after_create"
	EventResourceBeforeUpdate Event = "resource.before_update"
	EventResourceAfterUpdate  Event = "resource.after_update"
	EventPackageAfterUpdate   Event = "package.after_update"
)

// Operation 一次宿主操作 (如一次 resource_update) 的上下文，在各个钩子之间传递
type Operation struct {
	// Started 调用开始时间，归档副本的时间戳取这个值
	Started time.Time

	Resource  *protocol.Resource
	PackageID string

	// Uploaded 资源已写入对象存储，位置字段已被改写，宿主需要保存
	Uploaded bool
	// PackageArchived 本次操作已经重建过数据集 zip，package.after_update 不再重复
	PackageArchived bool
}

func NewOperation(now time.Time) *Operation {
	return &Operation{Started: now.UTC()}
}

// Stamp 归档 key 的时间戳后缀
func (op *Operation) Stamp() string {
	return naming.Stamp(op.Started)
}

// packageID 显式指定的优先，否则取资源所属数据集
func (op *Operation) packageID() string {
	if op.PackageID != "" {
		return op.PackageID
	}
	if op.Resource != nil {
		return op.Resource.PackageID
	}
	return ""
}

// Handler 事件处理函数
type Handler func(ctx context.Context, op *Operation) error

// Dispatcher 事件 -> 处理函数
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Event]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Event]Handler)}
}

// Register 同一事件重复注册时覆盖
func (d *Dispatcher) Register(ev Event, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[ev] = h
}

// Dispatch 未注册的事件返回 ParamError
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, op *Operation) error {
	d.mu.RLock()
	h, ok := d.handlers[ev]
	d.mu.RUnlock()
	if !ok {
		return e.New(code.ParamError, fmt.Sprintf("unknown event: %s", ev), nil)
	}
	return h(ctx, op)
}

// Events 已注册的事件 (排序)
func (d *Dispatcher) Events() []Event {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Event, 0, len(d.handlers))
	for ev := range d.handlers {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
