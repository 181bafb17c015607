package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"dex-parser-sol/internal/types"
)

var (
	// ErrTruncatedPayload 剩余字节不足以解码当前字段
	ErrTruncatedPayload = errors.New("truncated payload")
	// ErrInvalidEncoding 字节存在但内容非法（负偏移、非 UTF-8 字符串、未知字段类型）
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// DecodeError 携带出错字段与偏移，errors.Is 可判定为上面两种哨兵错误之一
type DecodeError struct {
	Field  string
	Offset int
	Need   int
	Have   int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v at offset %d (need %d, have %d)", e.Err, e.Offset, e.Need, e.Have)
	}
	return fmt.Sprintf("field %s: %v at offset %d (need %d, have %d)", e.Field, e.Err, e.Offset, e.Need, e.Have)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// check 校验 data[offset:offset+n] 可读
func check(data []byte, offset, n int) error {
	if offset < 0 {
		return &DecodeError{Offset: offset, Need: n, Have: len(data), Err: ErrInvalidEncoding}
	}
	if offset > len(data) || len(data)-offset < n {
		return &DecodeError{Offset: offset, Need: n, Have: max(len(data)-offset, 0), Err: ErrTruncatedPayload}
	}
	return nil
}

// Pubkey 读取 32 字节公钥
func Pubkey(data []byte, offset int) (types.Pubkey, int, error) {
	var pk types.Pubkey
	if err := check(data, offset, 32); err != nil {
		return pk, 0, err
	}
	copy(pk[:], data[offset:offset+32])
	return pk, 32, nil
}

func U8(data []byte, offset int) (uint8, int, error) {
	if err := check(data, offset, 1); err != nil {
		return 0, 0, err
	}
	return data[offset], 1, nil
}

// Bool 仅 1 为 true，其他任意单字节值均为 false
func Bool(data []byte, offset int) (bool, int, error) {
	if err := check(data, offset, 1); err != nil {
		return false, 0, err
	}
	return data[offset] == 1, 1, nil
}

func U16(data []byte, offset int) (uint16, int, error) {
	if err := check(data, offset, 2); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint16(data[offset:]), 2, nil
}

func U32(data []byte, offset int) (uint32, int, error) {
	if err := check(data, offset, 4); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint32(data[offset:]), 4, nil
}

func U64(data []byte, offset int) (uint64, int, error) {
	if err := check(data, offset, 8); err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(data[offset:]), 8, nil
}

func I64(data []byte, offset int) (int64, int, error) {
	v, n, err := U64(data, offset)
	return int64(v), n, err
}

// Uint128 小端 16 字节无符号整数，Lo 为低 64 位
type Uint128 struct {
	Lo uint64
	Hi uint64
}

func (u Uint128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u Uint128) String() string {
	return u.BigInt().String()
}

func (u Uint128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func U128(data []byte, offset int) (Uint128, int, error) {
	if err := check(data, offset, 16); err != nil {
		return Uint128{}, 0, err
	}
	return Uint128{
		Lo: binary.LittleEndian.Uint64(data[offset:]),
		Hi: binary.LittleEndian.Uint64(data[offset+8:]),
	}, 16, nil
}

// String 4 字节小端长度前缀 + UTF-8 内容
func String(data []byte, offset int) (string, int, error) {
	length, _, err := U32(data, offset)
	if err != nil {
		return "", 0, err
	}
	start := offset + 4
	if uint64(length) > uint64(len(data)-start) {
		return "", 0, &DecodeError{Offset: start, Need: int(length), Have: len(data) - start, Err: ErrTruncatedPayload}
	}
	raw := data[start : start+int(length)]
	if !utf8.Valid(raw) {
		return "", 0, &DecodeError{Offset: start, Need: int(length), Have: int(length), Err: ErrInvalidEncoding}
	}
	return string(raw), 4 + int(length), nil
}
