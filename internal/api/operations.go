package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"s3-resources/internal/pipeline"
)

// operationTTL 一次 before/after 钩子序列的最长间隔
const operationTTL = 15 * time.Minute

type opEntry struct {
	op   *pipeline.Operation
	seen time.Time
}

// operations 跨请求保存 Operation，before_* 返回的 operation_id 在 after_* 中带回
type operations struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]*opEntry
	now   func() time.Time
}

func newOperations(ttl time.Duration) *operations {
	return &operations{ttl: ttl, items: make(map[string]*opEntry), now: time.Now}
}

// get 找不到 (或已过期) 时返回 false
func (o *operations) get(id string) (*pipeline.Operation, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ent, ok := o.items[id]
	if !ok || o.now().Sub(ent.seen) > o.ttl {
		delete(o.items, id)
		return nil, false
	}
	ent.seen = o.now()
	return ent.op, true
}

// put 保存并返回新 ID，顺带清理过期项
func (o *operations) put(op *pipeline.Operation) string {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	for id, ent := range o.items {
		if now.Sub(ent.seen) > o.ttl {
			delete(o.items, id)
		}
	}

	id := uuid.NewString()
	o.items[id] = &opEntry{op: op, seen: now}
	return id
}

func (o *operations) drop(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.items, id)
}

func (o *operations) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.items)
}
