package tools

import (
	"testing"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestChooseQuote(t *testing.T) {
	meme := types.Pubkey{9}

	q, ok := ChooseQuote(meme, consts.WSOLMint)
	assert.True(t, ok)
	assert.Equal(t, consts.WSOLMint, q)

	q, ok = ChooseQuote(consts.USDCMint, consts.WSOLMint)
	assert.True(t, ok)
	assert.Equal(t, consts.WSOLMint, q)

	_, ok = ChooseQuote(meme, types.Pubkey{8})
	assert.False(t, ok)

	_, ok = ChooseQuote(consts.MSOLMint, consts.JupSOLMint)
	assert.False(t, ok, "equal priority is ambiguous")

	base, quote, ok := ChooseBaseQuote(consts.USDTMint, meme)
	assert.True(t, ok)
	assert.Equal(t, meme, base)
	assert.Equal(t, consts.USDTMint, quote)
}
