package tools

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/types"
)

// IsSPLToken 判断一个 ProgramId 是否为标准的 SPL Token 程序。
// 支持 Token v1（Tokenkeg...）和 Token-2022（Tokenz...）
func IsSPLToken(programId string) bool {
	return programId == consts.TokenProgramStr || programId == consts.TokenProgram2022Str
}

// IsSystemProgram 原生 SOL 转账来自 System Program
func IsSystemProgram(programId types.Pubkey) bool {
	return programId == consts.SystemProgram
}
