package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint64(t *testing.T) {
	v, err := ParseUint64("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, uint64(18446744073709551615), v)

	for _, bad := range []string{"", "-1", "1.5", "12x"} {
		_, err := ParseUint64(bad)
		assert.ErrorIs(t, err, strconv.ErrSyntax, bad)
	}
	_, err = ParseUint64("18446744073709551616")
	assert.ErrorIs(t, err, strconv.ErrRange)
}
