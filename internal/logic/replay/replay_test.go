package replay

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/parser"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	user      = testkit.Key(1)
	pool      = testkit.Key(60)
	tokenMint = testkit.Key(61)
	userSol   = testkit.Key(63)
	userToken = testkit.Key(64)
	vaultSol  = testkit.Key(66)
	vaultTok  = testkit.Key(67)
	authority = testkit.Key(68)
)

func cpmmSwap() *core.RawTransaction {
	b := testkit.NewTx(user).
		TokenAccount(userSol, consts.WSOLMint, user, 9, 3_000_000_000, 2_000_000_000).
		TokenAccount(userToken, tokenMint, user, 6, 0, 8_000_000).
		TokenAccount(vaultSol, consts.WSOLMint, authority, 9, 0, 1_000_000_000).
		TokenAccount(vaultTok, tokenMint, authority, 6, 100_000_000, 92_000_000)
	data := append(discriminator.Compute("global:swap_base_input", 8), make([]byte, 16)...)
	swap := b.Ix(consts.RaydiumCPMMProgram, data,
		user, authority, testkit.Key(69), pool, userSol, userToken, vaultSol, vaultTok,
		consts.TokenProgram, consts.TokenProgram, consts.WSOLMint, tokenMint,
	)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(1_000_000_000), userSol, vaultSol, user)
	b.Inner(swap, consts.TokenProgram, testkit.TransferData(8_000_000), vaultTok, userToken, authority)
	return b.Raw()
}

func TestFileRoundTripParsesSame(t *testing.T) {
	raw := cpmmSwap()
	direct, err := parser.New(nil).ParseTransaction(raw)
	require.NoError(t, err)
	want, err := parser.EncodeEvents(direct.Events)
	require.NoError(t, err)

	data, err := Encode(&File{
		Pools:        []Pool{{Pool: pool, BaseMint: tokenMint, QuoteMint: consts.WSOLMint, BaseDecimals: 6, QuoteDecimals: 9, Dex: consts.DexRaydiumCPMM}},
		Transactions: []Transaction{FromRaw(raw)},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), consts.RaydiumCPMMProgram.String())

	f, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, f.PoolInfos(), 1)
	assert.Equal(t, pool, f.PoolInfos()[0].Pool)

	raws, err := f.RawTransactions()
	require.NoError(t, err)
	require.Len(t, raws, 1)
	replayed, err := parser.New(nil).ParseTransaction(raws[0])
	require.NoError(t, err)
	got, err := parser.EncodeEvents(replayed.Events)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunOutputs(t *testing.T) {
	unknown := testkit.NewTx(user)
	unknown.Ix(consts.RaydiumCPMMProgram, discriminator.Compute("global:collect_fund_fee", 8), pool)
	unknownRaw := unknown.Raw()
	unknownRaw.TxIndex = 1

	bad := cpmmSwap()
	bad.TxIndex = 2
	bad.Instructions[0].ProgramIDIndex = 999

	f := &File{Transactions: []Transaction{FromRaw(cpmmSwap()), FromRaw(unknownRaw), FromRaw(bad)}}
	outs, err := Run(f, 2)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	require.Len(t, outs[0].Records, 1)
	assert.Equal(t, "trade", outs[0].Records[0].Kind)
	assert.Nil(t, outs[0].Diagnostics)

	assert.Empty(t, outs[1].Records)
	require.NotNil(t, outs[1].Diagnostics)
	assert.Len(t, outs[1].Diagnostics.Unknowns, 1)

	assert.NotEmpty(t, outs[2].Error)
	assert.Equal(t, uint32(2), outs[2].TxIndex)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONLines(&buf, outs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, outs[0].Signature, first["signature"])
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transactions:\n  - signature: \"0OIl\"\n"), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	_, err = f.RawTransactions()
	assert.ErrorContains(t, err, "transaction #0")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Decode([]byte("transactions: {"))
	assert.Error(t, err)
}
