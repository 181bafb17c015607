package core

import (
	"encoding/json"
	"testing"

	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdx(t *testing.T) {
	assert.Equal(t, "3", (&AdaptedInstruction{IxIndex: 3}).Idx())
	assert.Equal(t, "3-0", (&AdaptedInstruction{IxIndex: 3, InnerIndex: 1}).Idx())
	assert.Equal(t, "12-4", (&AdaptedInstruction{IxIndex: 12, InnerIndex: 5}).Idx())
}

func TestBuildEventID(t *testing.T) {
	assert.Equal(t, uint64(0x0000000200030001), BuildEventID(2, 3, 1))
	assert.NotEqual(t, BuildEventID(1, 0, 0), BuildEventID(0, 1, 0))
	// 超过 255 条主指令或 inner 指令时仍不冲突
	assert.NotEqual(t, BuildEventID(0, 256, 0), BuildEventID(1, 0, 0))
	assert.NotEqual(t, BuildEventID(0, 0, 256), BuildEventID(0, 1, 0))
	assert.Equal(t, uint64(0xffffffffffffffff), BuildEventID(0xffffffff, 0xffff, 0xffff))
}

func TestNewTokenAmount(t *testing.T) {
	a := NewTokenAmount(types.Pubkey{1}, 1_500_000, 6)
	assert.Equal(t, "1500000", a.AmountRaw)
	assert.Equal(t, "1.5", a.Amount)
}

func TestTradeInfoJSONOmitsEmptyLabels(t *testing.T) {
	trade := TradeInfo{Type: TradeSwap, InputToken: NewTokenAmount(types.Pubkey{}, 1, 0)}
	data, err := json.Marshal(trade)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.NotContains(t, m, "amm")
	assert.NotContains(t, m, "route")
	assert.NotContains(t, m, "fee")
	assert.NotContains(t, m, "fees")
	assert.Equal(t, "1", m["inputToken"].(map[string]any)["amountRaw"])
}

func TestAccountLookups(t *testing.T) {
	a, b := types.Pubkey{1}, types.Pubkey{2}
	tx := &AdaptedTx{
		Accounts:    []AccountMeta{{Pubkey: a, Signer: true}, {Pubkey: b}},
		SolBalances: map[types.Pubkey]*SolBalance{a: {PreBalance: 10, PostBalance: 5, Account: a}},
		Balances:    map[types.Pubkey]*TokenBalance{b: {PostBalance: 7, TokenAccount: b}},
	}
	_, err := tx.Account(2)
	assert.ErrorIs(t, err, ErrAccountIndexOutOfRange)

	sol, ok := tx.SolBalanceAt(0)
	require.True(t, ok)
	assert.Equal(t, uint64(5), sol.PostBalance)

	tok, ok := tx.TokenBalanceAt(1)
	require.True(t, ok)
	assert.Equal(t, uint64(7), tok.PostBalance)

	_, ok = tx.TokenBalanceAt(-1)
	assert.False(t, ok)
}
