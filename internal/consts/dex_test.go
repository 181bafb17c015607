package consts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDexByProgram(t *testing.T) {
	assert.Equal(t, DexPumpfun, DexByProgram(PumpFunProgram))
	assert.Equal(t, "Pumpfun", DexName(DexByProgram(PumpFunProgram)))
	assert.Equal(t, 0, DexByProgram(TokenProgram))
	assert.Equal(t, "Unknown", DexName(99))
	assert.Len(t, GrpcAccountInclude, len(DexPrograms))
}
