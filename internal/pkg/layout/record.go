package layout

import "dex-parser-sol/internal/types"

// Record 一次 Struct 解码的结果，按字段名读取
type Record struct {
	layout *Struct
	values []any
}

func (r Record) index(name string) int {
	if r.layout == nil {
		return -1
	}
	for i, f := range r.layout.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get 返回字段值；字段不存在或为缺省的尾部字段时 ok=false
func (r Record) Get(name string) (any, bool) {
	i := r.index(name)
	if i < 0 || r.values[i] == nil {
		return nil, false
	}
	return r.values[i], true
}

func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Values 导出为 map，缺省字段不出现
func (r Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	if r.layout == nil {
		return out
	}
	for i, f := range r.layout.fields {
		if r.values[i] != nil {
			out[f.Name] = r.values[i]
		}
	}
	return out
}

func get[T any](r Record, name string) T {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		return zero
	}
	return t
}

func (r Record) Pubkey(name string) types.Pubkey { return get[types.Pubkey](r, name) }
func (r Record) U8(name string) uint8            { return get[uint8](r, name) }
func (r Record) Bool(name string) bool           { return get[bool](r, name) }
func (r Record) U16(name string) uint16          { return get[uint16](r, name) }
func (r Record) U32(name string) uint32          { return get[uint32](r, name) }
func (r Record) U64(name string) uint64          { return get[uint64](r, name) }
func (r Record) I64(name string) int64           { return get[int64](r, name) }
func (r Record) U128(name string) Uint128        { return get[Uint128](r, name) }
func (r Record) String(name string) string       { return get[string](r, name) }
