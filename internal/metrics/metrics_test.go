package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/testkit"
	"dex-parser-sol/internal/types"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveResult(t *testing.T) {
	m := New("test")
	m.ObserveResult(&core.ParseResult{
		Events: []*core.Event{
			{Kind: core.EventTrade, Trade: &core.TradeInfo{AMM: "Pumpfun"}},
			{Kind: core.EventTrade, Trade: &core.TradeInfo{AMM: "Pumpfun"}},
			{Kind: core.EventPool, Pool: &core.PoolEvent{AMM: "RaydiumV4"}},
		},
		Unknowns:     []core.UnknownInstruction{{ProgramID: testkit.Key(3)}},
		Warnings:     []core.ParseWarning{{Kind: core.WarnMissingTransfer}},
		MissingPools: []types.Pubkey{testkit.Key(4), testkit.Key(5)},
		LogTruncated: true,
	})
	m.ObserveFailure()
	m.ObserveBlock(123, 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TxFailed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records.WithLabelValues("trade", "Pumpfun")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("pool", "RaydiumV4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Unknowns.WithLabelValues(testkit.Key(3).String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Warnings.WithLabelValues(string(core.WarnMissingTransfer))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MissingPools))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogTruncated))
	assert.Equal(t, 123.0, testutil.ToFloat64(m.HighestSlot))
}

func TestServerHandler(t *testing.T) {
	m := New("")
	m.ObserveFailure()
	s := NewServer("127.0.0.1:0", m)

	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "dex_parser_sol_parser_transactions_failed_total 1"))
}
