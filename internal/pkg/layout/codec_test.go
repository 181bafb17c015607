package layout

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives(t *testing.T) {
	data := binary.LittleEndian.AppendUint64(nil, math.MaxUint64)
	v, n, err := U64(data, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, 8, n)

	_, _, err = U64(data, 1)
	assert.ErrorIs(t, err, ErrTruncatedPayload)

	_, _, err = U64(data, -1)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	u, n, err := U128(append(binary.LittleEndian.AppendUint64(nil, 1), binary.LittleEndian.AppendUint64(nil, 1)...), 0)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, "18446744073709551617", u.String())
}

func TestBoolNeverFails(t *testing.T) {
	for b := 0; b < 256; b++ {
		v, n, err := Bool([]byte{byte(b)}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, b == 1, v)
	}
}

func TestString(t *testing.T) {
	data := binary.LittleEndian.AppendUint32(nil, 5)
	data = append(data, "hello!"...)
	s, n, err := String(data, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, 9, n)

	t.Run("declared length exceeds payload", func(t *testing.T) {
		short := binary.LittleEndian.AppendUint32(nil, 10)
		short = append(short, "abc"...)
		_, _, err := String(short, 0)
		assert.ErrorIs(t, err, ErrTruncatedPayload)
	})

	t.Run("huge length prefix", func(t *testing.T) {
		huge := binary.LittleEndian.AppendUint32(nil, math.MaxUint32)
		_, _, err := String(huge, 0)
		assert.ErrorIs(t, err, ErrTruncatedPayload)
	})

	t.Run("non utf8", func(t *testing.T) {
		bad := binary.LittleEndian.AppendUint32(nil, 2)
		bad = append(bad, 0xff, 0xfe)
		_, _, err := String(bad, 0)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

var allKinds = NewStruct("AllKinds",
	Field{Name: "key", Kind: KindPubkey},
	Field{Name: "small", Kind: KindU8},
	Field{Name: "flag", Kind: KindBool},
	Field{Name: "short", Kind: KindU16},
	Field{Name: "word", Kind: KindU32},
	Field{Name: "amount", Kind: KindU64},
	Field{Name: "ts", Kind: KindI64},
	Field{Name: "big", Kind: KindU128},
	Field{Name: "name", Kind: KindString},
	Field{Name: "extra", Kind: KindU64, Trailing: true},
)

func TestStructRoundTrip(t *testing.T) {
	require.Len(t, allKinds.Fields(), 10)
	assert.Equal(t, "AllKinds", allKinds.Name())

	values := map[string]any{
		"key":    types.PubkeyFromBase58("So11111111111111111111111111111111111111112"),
		"small":  uint8(7),
		"flag":   true,
		"short":  uint16(513),
		"word":   uint32(70000),
		"amount": uint64(1_000_000_000),
		"ts":     int64(-42),
		"big":    Uint128{Lo: 5, Hi: 9},
		"name":   "pump",
		"extra":  uint64(3),
	}
	data, err := allKinds.Encode(values)
	require.NoError(t, err)

	rec, n, err := allKinds.Decode(data, 0)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, values, rec.Values())
	assert.Equal(t, uint64(1_000_000_000), rec.U64("amount"))
	assert.Equal(t, "pump", rec.String("name"))
	assert.True(t, rec.Bool("flag"))
}

func TestStructTrailingFieldsAbsent(t *testing.T) {
	values := map[string]any{
		"key": types.Pubkey{1}, "small": uint8(0), "flag": false, "short": uint16(0),
		"word": uint32(0), "amount": uint64(1), "ts": int64(0), "big": Uint128{}, "name": "",
	}
	data, err := allKinds.Encode(values)
	require.NoError(t, err)

	rec, _, err := allKinds.Decode(data, 0)
	require.NoError(t, err)
	assert.False(t, rec.Has("extra"))
	assert.Equal(t, uint64(0), rec.U64("extra"))

	// 尾部字段只有部分字节时仍然是截断
	_, _, err = allKinds.Decode(append(data, 1, 2, 3), 0)
	assert.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestStructTruncatedReportsField(t *testing.T) {
	data, err := allKinds.Encode(map[string]any{
		"key": types.Pubkey{}, "small": uint8(0), "flag": false, "short": uint16(0),
		"word": uint32(0), "amount": uint64(1), "ts": int64(0), "big": Uint128{}, "name": "x",
	})
	require.NoError(t, err)

	_, _, err = allKinds.Decode(data[:40], 0)
	require.ErrorIs(t, err, ErrTruncatedPayload)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "AllKinds.amount", de.Field)
}

func TestEncodeRejectsWrongType(t *testing.T) {
	s := NewStruct("One", Field{Name: "amount", Kind: KindU64})
	_, err := s.Encode(map[string]any{"amount": 1})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
	_, err = s.Encode(map[string]any{})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestNewStructPanicsOnBadLayout(t *testing.T) {
	assert.Panics(t, func() {
		NewStruct("Dup", Field{Name: "a", Kind: KindU8}, Field{Name: "a", Kind: KindU8})
	})
	assert.Panics(t, func() {
		NewStruct("Order", Field{Name: "a", Kind: KindU8, Trailing: true}, Field{Name: "b", Kind: KindU8})
	})
}
