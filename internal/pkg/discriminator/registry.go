package discriminator

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// EventWidth Anchor 风格 "event:<Name>" / "global:<name>" 的 8 字节前缀
	EventWidth = 8
	// TagWidth 单字节指令类型 / 日志类型标签
	TagWidth = 1
)

// Compute 对签名字符串做 sha256 并截取前 width 字节
func Compute(signature string, width int) []byte {
	sum := sha256.Sum256([]byte(signature))
	out := make([]byte, width)
	copy(out, sum[:width])
	return out
}

// DecodeFunc 对去掉前缀后的剩余字节解码
type DecodeFunc[T any] func(body []byte) (T, error)

// Entry 一条前缀 → 解码函数映射
type Entry[T any] struct {
	Name      string // 签名或可读名，如 "event:TradeEvent"、"SwapBaseIn"
	Signature string // 哈希来源；Tag 条目为空
	Prefix    []byte
	Decode    DecodeFunc[T]
}

// Signature 由签名字符串哈希得到前缀，width 由所属 Registry 决定
func Signature[T any](signature string, decode DecodeFunc[T]) Entry[T] {
	return Entry[T]{Name: signature, Signature: signature, Decode: decode}
}

// Tag 使用固定的小整数编码作为前缀，直接按字节比较
func Tag[T any](name string, prefix []byte, decode DecodeFunc[T]) Entry[T] {
	return Entry[T]{Name: name, Prefix: append([]byte(nil), prefix...), Decode: decode}
}

// Match 一次分发的结果。Known=false 表示未注册的前缀，此时 Raw 保留原始 payload。
type Match[T any] struct {
	Known  bool
	Name   string
	Prefix []byte
	Value  T
	Raw    []byte
}

// Registry 单协议的前缀表，New 之后只读，可被多个 goroutine 并发使用
type Registry[T any] struct {
	protocol string
	width    int
	entries  []Entry[T]
}

// New 构造注册表；前缀宽度不符或重复属于初始化期编程错误，直接 panic
func New[T any](protocol string, width int, entries ...Entry[T]) *Registry[T] {
	if width <= 0 {
		panic(fmt.Sprintf("discriminator %s: invalid width %d", protocol, width))
	}
	table := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		if e.Signature != "" {
			e.Prefix = Compute(e.Signature, width)
		}
		if len(e.Prefix) != width {
			panic(fmt.Sprintf("discriminator %s: entry %s prefix width %d, want %d", protocol, e.Name, len(e.Prefix), width))
		}
		if e.Decode == nil {
			panic(fmt.Sprintf("discriminator %s: entry %s has no decoder", protocol, e.Name))
		}
		for _, prev := range table {
			if bytes.Equal(prev.Prefix, e.Prefix) {
				panic(fmt.Sprintf("discriminator %s: duplicate prefix %s for %s and %s",
					protocol, hex.EncodeToString(e.Prefix), prev.Name, e.Name))
			}
		}
		table = append(table, e)
	}
	return &Registry[T]{protocol: protocol, width: width, entries: table}
}

func (r *Registry[T]) Protocol() string { return r.protocol }

func (r *Registry[T]) Width() int { return r.width }

// Entries 返回条目副本
func (r *Registry[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(r.entries))
	for i, e := range r.entries {
		e.Prefix = append([]byte(nil), e.Prefix...)
		out[i] = e
	}
	return out
}

// Lookup 只匹配前缀，不解码
func (r *Registry[T]) Lookup(payload []byte) (string, bool) {
	if e := r.find(payload); e != nil {
		return e.Name, true
	}
	return "", false
}

// Dispatch 取前 width 字节线性比对，命中则对剩余字节调用解码函数。
// 未命中或 payload 不足 width 字节返回 Known=false 且 err=nil；解码失败返回 error。
func (r *Registry[T]) Dispatch(payload []byte) (Match[T], error) {
	e := r.find(payload)
	if e == nil {
		return Match[T]{Raw: payload}, nil
	}
	m := Match[T]{Known: true, Name: e.Name, Prefix: e.Prefix, Raw: payload}
	v, err := e.Decode(payload[r.width:])
	if err != nil {
		return m, fmt.Errorf("%s %s: %w", r.protocol, e.Name, err)
	}
	m.Value = v
	return m, nil
}

func (r *Registry[T]) find(payload []byte) *Entry[T] {
	if len(payload) < r.width {
		return nil
	}
	head := payload[:r.width]
	for i := range r.entries {
		if bytes.Equal(r.entries[i].Prefix, head) {
			return &r.entries[i]
		}
	}
	return nil
}
