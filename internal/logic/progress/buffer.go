package progress

import (
	"sync"
)

// slotBuffer 暂存待落库的 slot 记录，由 flush 循环批量取走
type slotBuffer struct {
	mu     sync.Mutex
	buffer []*SlotRecord
}

func newSlotBuffer() *slotBuffer {
	return &slotBuffer{}
}

func (b *slotBuffer) Add(record *SlotRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = append(b.buffer, record)
}

// Flush 取走全部记录并清空
func (b *slotBuffer) Flush() []*SlotRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	flushed := b.buffer
	b.buffer = nil
	return flushed
}

// Requeue 落库失败时把记录放回队首，下次 flush 重试
func (b *slotBuffer) Requeue(records []*SlotRecord) {
	if len(records) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = append(append(make([]*SlotRecord, 0, len(records)+len(b.buffer)), records...), b.buffer...)
}

func (b *slotBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}
