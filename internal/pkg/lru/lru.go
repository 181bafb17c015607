package lru

import "fmt"

const nilHandle int32 = -1

// node 存放在 arena 切片中，前后指针均为切片下标
type node[K comparable, V any] struct {
	key  K
	val  V
	prev int32
	next int32
}

// Cache 基于下标 arena 的定长 LRU。
// 所有节点位于同一个切片中，链表通过 int32 句柄连接，map 只保存 key → 句柄。
// Get 会调整最近使用顺序，因此 Cache 本身不是并发安全的，需由调用方串行化。
type Cache[K comparable, V any] struct {
	capacity int
	nodes    []node[K, V]
	index    map[K]int32
	free     []int32
	head     int32 // 最近使用
	tail     int32 // 最久未使用
}

// New 创建容量为 capacity 的缓存，capacity < 1 视为编程错误
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 1 {
		panic(fmt.Sprintf("lru: invalid capacity %d", capacity))
	}
	return &Cache[K, V]{
		capacity: capacity,
		nodes:    make([]node[K, V], 0, capacity),
		index:    make(map[K]int32, capacity),
		head:     nilHandle,
		tail:     nilHandle,
	}
}

func (c *Cache[K, V]) Len() int { return len(c.index) }

func (c *Cache[K, V]) Cap() int { return c.capacity }

// Get 命中时将条目移到最近使用位置；未命中无副作用
func (c *Cache[K, V]) Get(key K) (V, bool) {
	h, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(h)
	return c.nodes[h].val, true
}

// Peek 读取但不刷新最近使用顺序
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	h, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.nodes[h].val, true
}

// Set 已存在则更新值并刷新顺序（占用不变）；否则插入，满时淘汰最久未使用条目。
// 返回被淘汰的 key（evicted=true 时有效）。
func (c *Cache[K, V]) Set(key K, val V) (evictedKey K, evicted bool) {
	if h, ok := c.index[key]; ok {
		c.nodes[h].val = val
		c.moveToFront(h)
		return evictedKey, false
	}

	if len(c.index) >= c.capacity {
		evictedKey, evicted = c.nodes[c.tail].key, true
		c.removeHandle(c.tail)
	}

	h := c.alloc(key, val)
	c.index[key] = h
	c.pushFront(h)
	return evictedKey, evicted
}

// Remove 删除条目，返回是否存在
func (c *Cache[K, V]) Remove(key K) bool {
	h, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeHandle(h)
	return true
}

// Clear 清空全部条目，保留已分配的 arena 容量
func (c *Cache[K, V]) Clear() {
	clear(c.index)
	c.nodes = c.nodes[:0]
	c.free = c.free[:0]
	c.head, c.tail = nilHandle, nilHandle
}

// Keys 按最近使用到最久未使用的顺序返回
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.index))
	for h := c.head; h != nilHandle; h = c.nodes[h].next {
		keys = append(keys, c.nodes[h].key)
	}
	return keys
}

func (c *Cache[K, V]) alloc(key K, val V) int32 {
	n := node[K, V]{key: key, val: val, prev: nilHandle, next: nilHandle}
	if l := len(c.free); l > 0 {
		h := c.free[l-1]
		c.free = c.free[:l-1]
		c.nodes[h] = n
		return h
	}
	c.nodes = append(c.nodes, n)
	return int32(len(c.nodes) - 1)
}

func (c *Cache[K, V]) removeHandle(h int32) {
	c.unlink(h)
	delete(c.index, c.nodes[h].key)
	c.nodes[h] = node[K, V]{prev: nilHandle, next: nilHandle}
	c.free = append(c.free, h)
}

func (c *Cache[K, V]) moveToFront(h int32) {
	if c.head == h {
		return
	}
	c.unlink(h)
	c.pushFront(h)
}

func (c *Cache[K, V]) pushFront(h int32) {
	n := &c.nodes[h]
	n.prev = nilHandle
	n.next = c.head
	if c.head != nilHandle {
		c.nodes[c.head].prev = h
	}
	c.head = h
	if c.tail == nilHandle {
		c.tail = h
	}
}

func (c *Cache[K, V]) unlink(h int32) {
	n := &c.nodes[h]
	if n.prev != nilHandle {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nilHandle {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nilHandle, nilHandle
}
