package layout

import (
	"encoding/binary"
	"errors"
	"fmt"

	"dex-parser-sol/internal/types"
)

// Kind 字段编码类型
type Kind uint8

const (
	KindPubkey Kind = iota + 1
	KindU8
	KindBool
	KindU16
	KindU32
	KindU64
	KindI64
	KindU128
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindPubkey:
		return "pubkey"
	case KindU8:
		return "u8"
	case KindBool:
		return "bool"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindU128:
		return "u128"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Field 结构体中的一个命名字段。
// Trailing 表示该字段属于后续版本追加的尾部字段：payload 恰好在其之前结束时视为缺省，不报错。
type Field struct {
	Name     string
	Kind     Kind
	Trailing bool
}

// Struct 按声明顺序排列的字段布局，构造后只读
type Struct struct {
	name   string
	fields []Field
}

// NewStruct 构造布局；Trailing 字段之后不允许再出现非 Trailing 字段
func NewStruct(name string, fields ...Field) *Struct {
	seenTrailing := false
	names := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := names[f.Name]; dup {
			panic(fmt.Sprintf("layout %s: duplicate field %s", name, f.Name))
		}
		names[f.Name] = struct{}{}
		if f.Trailing {
			seenTrailing = true
		} else if seenTrailing {
			panic(fmt.Sprintf("layout %s: required field %s after trailing fields", name, f.Name))
		}
	}
	return &Struct{name: name, fields: append([]Field(nil), fields...)}
}

func (s *Struct) Name() string { return s.name }

func (s *Struct) Fields() []Field { return append([]Field(nil), s.fields...) }

// Decode 依次解码各字段并推进偏移，返回记录与总消耗字节数
func (s *Struct) Decode(data []byte, offset int) (Record, int, error) {
	rec := Record{layout: s, values: make([]any, len(s.fields))}
	if offset < 0 {
		return rec, 0, &DecodeError{Field: s.name, Offset: offset, Have: len(data), Err: ErrInvalidEncoding}
	}
	pos := offset
	for i, f := range s.fields {
		if f.Trailing && pos == len(data) {
			break
		}
		v, n, err := decodeKind(f.Kind, data, pos)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Field = s.name + "." + f.Name
				return rec, 0, de
			}
			return rec, 0, err
		}
		rec.values[i] = v
		pos += n
	}
	return rec, pos - offset, nil
}

func decodeKind(k Kind, data []byte, offset int) (any, int, error) {
	switch k {
	case KindPubkey:
		return wrap(Pubkey(data, offset))
	case KindU8:
		return wrap(U8(data, offset))
	case KindBool:
		return wrap(Bool(data, offset))
	case KindU16:
		return wrap(U16(data, offset))
	case KindU32:
		return wrap(U32(data, offset))
	case KindU64:
		return wrap(U64(data, offset))
	case KindI64:
		return wrap(I64(data, offset))
	case KindU128:
		return wrap(U128(data, offset))
	case KindString:
		return wrap(String(data, offset))
	}
	return nil, 0, &DecodeError{Offset: offset, Err: ErrInvalidEncoding}
}

func wrap[T any](v T, n int, err error) (any, int, error) {
	if err != nil {
		return nil, 0, err
	}
	return v, n, nil
}

// Encode 是 Decode 的逆操作，主要用于构造测试数据。
// values 中缺失的 Trailing 字段及其之后的字段不写出；缺失必填字段或类型不符返回 ErrInvalidEncoding。
func (s *Struct) Encode(values map[string]any) ([]byte, error) {
	buf := make([]byte, 0, 64)
	for _, f := range s.fields {
		v, ok := values[f.Name]
		if !ok {
			if f.Trailing {
				break
			}
			return nil, fmt.Errorf("layout %s: missing field %s: %w", s.name, f.Name, ErrInvalidEncoding)
		}
		var err error
		if buf, err = appendKind(buf, f.Kind, v); err != nil {
			return nil, fmt.Errorf("layout %s: field %s: %w", s.name, f.Name, err)
		}
	}
	return buf, nil
}

func appendKind(buf []byte, k Kind, v any) ([]byte, error) {
	bad := fmt.Errorf("%T is not %s: %w", v, k, ErrInvalidEncoding)
	switch k {
	case KindPubkey:
		pk, ok := v.(types.Pubkey)
		if !ok {
			return nil, bad
		}
		return append(buf, pk[:]...), nil
	case KindU8:
		x, ok := v.(uint8)
		if !ok {
			return nil, bad
		}
		return append(buf, x), nil
	case KindBool:
		x, ok := v.(bool)
		if !ok {
			return nil, bad
		}
		if x {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case KindU16:
		x, ok := v.(uint16)
		if !ok {
			return nil, bad
		}
		return binary.LittleEndian.AppendUint16(buf, x), nil
	case KindU32:
		x, ok := v.(uint32)
		if !ok {
			return nil, bad
		}
		return binary.LittleEndian.AppendUint32(buf, x), nil
	case KindU64:
		x, ok := v.(uint64)
		if !ok {
			return nil, bad
		}
		return binary.LittleEndian.AppendUint64(buf, x), nil
	case KindI64:
		x, ok := v.(int64)
		if !ok {
			return nil, bad
		}
		return binary.LittleEndian.AppendUint64(buf, uint64(x)), nil
	case KindU128:
		x, ok := v.(Uint128)
		if !ok {
			return nil, bad
		}
		buf = binary.LittleEndian.AppendUint64(buf, x.Lo)
		return binary.LittleEndian.AppendUint64(buf, x.Hi), nil
	case KindString:
		x, ok := v.(string)
		if !ok {
			return nil, bad
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(x)))
		return append(buf, x...), nil
	}
	return nil, bad
}
