package tools

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		raw      uint64
		decimals uint8
		want     string
	}{
		{1_000_000_000, 9, "1"},
		{500_000_000, 6, "500"},
		{1_500_000, 6, "1.5"},
		{1, 6, "0.000001"},
		{1_234_567, 3, "1234.567"},
		{0, 9, "0"},
		{math.MaxUint64, 0, "18446744073709551615"},
		{math.MaxUint64, 9, "18446744073.709551615"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatAmount(c.raw, c.decimals))
	}
}

func TestSumRaw(t *testing.T) {
	assert.Equal(t, "100", SumRaw(100, 0))
	assert.Equal(t, "36893488147419103230", SumRaw(math.MaxUint64, math.MaxUint64))
}

func TestScaleRawString(t *testing.T) {
	s, ok := ScaleRawString("36893488147419103230", 9)
	assert.True(t, ok)
	assert.Equal(t, "36893488147.41910323", s)
	_, ok = ScaleRawString("abc", 9)
	assert.False(t, ok)
}
