package logscanner

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pump  = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"
	ray   = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	token = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func b64(data ...byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestScanAttributesDataToTopFrame(t *testing.T) {
	lines := []string{
		"Program " + pump + " invoke [1]",
		"Program log: Instruction: Buy",
		"Program " + token + " invoke [2]",
		"Program data: " + b64(9, 9),
		"Program " + token + " success",
		"Program data: " + b64(1, 2, 3),
		"Program " + pump + " consumed 30000 of 200000 compute units",
		"Program " + pump + " success",
	}

	res := Scan(lines, Options{Programs: []string{pump}})
	assert.False(t, res.Truncated)
	assert.Zero(t, res.Malformed)
	require.Len(t, res.Events, 1)
	assert.Equal(t, pump, res.Events[0].Program)
	assert.Equal(t, 1, res.Events[0].Depth)
	assert.Equal(t, []byte{1, 2, 3}, res.Events[0].Data)
	assert.Equal(t, KindData, res.Events[0].Kind)

	all := Scan(lines, Options{})
	assert.Len(t, all.Events, 2)
	assert.Len(t, all.ByProgram(token), 1)
}

func TestScanTruncatedLog(t *testing.T) {
	lines := []string{
		"Program " + pump + " invoke [1]",
		"Program data: " + b64(7),
		"Program " + token + " invoke [2]",
		"Log truncated",
	}
	res := Scan(lines, Options{Programs: []string{pump}})
	assert.True(t, res.Truncated)
	require.Len(t, res.Events, 1)
	assert.Equal(t, []byte{7}, res.Events[0].Data)
}

func TestScanFailedPopsFrame(t *testing.T) {
	lines := []string{
		"Program " + ray + " invoke [1]",
		"Program " + token + " invoke [2]",
		"Program " + token + " failed: custom program error: 0x1",
		"Program data: " + b64(5),
		"Program " + ray + " failed: custom program error: 0x1",
	}
	res := Scan(lines, Options{})
	assert.False(t, res.Truncated)
	require.Len(t, res.Events, 1)
	assert.Equal(t, ray, res.Events[0].Program)
}

func TestScanLogPrefixAndMalformed(t *testing.T) {
	unpadded := base64.RawStdEncoding.EncodeToString([]byte{3, 1})
	lines := []string{
		"Program " + ray + " invoke [1]",
		"Program log: ray_log: " + unpadded,
		"Program log: ray_log: !!!not-base64",
		"Program log: something else",
		"Program " + ray + " success",
		"Program data: " + b64(1),
	}
	res := Scan(lines, Options{Programs: []string{ray}, LogPrefixes: []string{"ray_log: "}})
	require.Len(t, res.Events, 1)
	assert.Equal(t, "ray_log", res.Events[0].Kind)
	assert.Equal(t, []byte{3, 1}, res.Events[0].Data)
	assert.Equal(t, 1, res.Events[0].Line)
	// 一条无法解码，一条 data 行没有调用帧
	assert.Equal(t, 2, res.Malformed)
}

func TestScanRecordsInvokeOrdinal(t *testing.T) {
	lines := []string{
		"Program " + pump + " invoke [1]",
		"Program data: " + b64(1),
		"Program " + pump + " success",
		"Program " + ray + " invoke [1]",
		"Program " + pump + " invoke [2]",
		"Program data: " + b64(2),
		"Program " + pump + " success",
		"Program " + ray + " success",
		"Program " + pump + " invoke [1]",
		"Program " + pump + " invoke [2]",
		"Program " + pump + " success",
		"Program data: " + b64(3),
		"Program " + pump + " success",
	}
	res := Scan(lines, Options{Programs: []string{pump}})
	require.Len(t, res.Events, 3)
	assert.Equal(t, 0, res.Events[0].Invoke)
	assert.Equal(t, 1, res.Events[1].Invoke)
	assert.Equal(t, 2, res.Events[1].Depth)
	// 自调用帧（第 4 次）返回后，事件仍归属外层第 3 次调用
	assert.Equal(t, 2, res.Events[2].Invoke)

	third := res.InFrame(pump, 2, KindData)
	require.Len(t, third, 1)
	assert.Equal(t, []byte{3}, third[0].Data)
	assert.Empty(t, res.InFrame(pump, 3, KindData))
	assert.Empty(t, res.InFrame(ray, 0, KindData))
}
