package consts

import "dex-parser-sol/internal/types"

const (
	DexRaydiumV4     = iota + 1 // 1
	DexRaydiumCLMM              // 2
	DexPumpfunAMM               // 3
	DexPumpfun                  // 4
	DexRaydiumCPMM              // 5
	DexMeteoraDLMM              // 6
	DexOrcaWhirlpool            // 7
)

var DexNames = []string{
	"Unknown",       // 0 (保留)
	"RaydiumV4",     // 1
	"RaydiumCLMM",   // 2
	"PumpfunAMM",    // 3
	"Pumpfun",       // 4
	"RaydiumCPMM",   // 5
	"MeteoraDLMM",   // 6
	"OrcaWhirlpool", // 7
}

func DexName(dex int) string {
	if dex >= 1 && dex < len(DexNames) {
		return DexNames[dex]
	}
	return DexNames[0] // Unknown
}

// DexPrograms ProgramID → Dex 枚举，日志扫描兴趣集与指标标签共用
var DexPrograms = map[types.Pubkey]int{
	RaydiumV4Program:     DexRaydiumV4,
	RaydiumCLMMProgram:   DexRaydiumCLMM,
	PumpFunAMMProgram:    DexPumpfunAMM,
	PumpFunProgram:       DexPumpfun,
	RaydiumCPMMProgram:   DexRaydiumCPMM,
	MeteoraDLMMProgram:   DexMeteoraDLMM,
	OrcaWhirlpoolProgram: DexOrcaWhirlpool,
}

// DexByProgram 返回 program 对应的 Dex 枚举，未知返回 0
func DexByProgram(program types.Pubkey) int {
	return DexPrograms[program]
}
