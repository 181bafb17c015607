package raydiumcpmm

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/types"
)

const ammName = "RaydiumCPMM"

// Raydium CPMM Swap 账户结构（swap_base_input 与 swap_base_output 相同）:
//
//	0  - Payer
//	1  - Authority
//	2  - Amm Config
//	3  - Pool State
//	4  - Input Token Account
//	5  - Output Token Account
//	6  - Input Vault
//	7  - Output Vault
//	8  - Input Token Program
//	9  - Output Token Program
//	10 - Input Token Mint
//	11 - Output Token Mint
//
// swapBaseInput: https://solscan.io/tx/318RwCgKihTL1CtGv2WnSxzVKvMWqJaZAPQE6ZUNA3dSnqtBr8BpLvcjZzf1MvUM71GaRQynKL6EqVFAYhEbKQho
// swapBaseOutput: https://solscan.io/tx/2oYhut5RS46rJqZNcCmzNpnDmfYrWjDbFyskWigWJ1zAuHJ8dRHgiEWPFQb6yzzX1eg3wjuf1WpRe2BbqtpK1YiV
var swapIndexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 4,
	UserToken2AccountIndex: 5,
	PoolToken1AccountIndex: 6,
	PoolToken2AccountIndex: 7,
}

// deposit / withdraw 账户布局相同：
//
//	#0  Owner
//	#1  Authority
//	#2  Pool State
//	#3  Owner LP Token Account
//	#4  Token 0 Account
//	#5  Token 1 Account
//	#6  Token 0 Vault
//	#7  Token 1 Vault
//	#8  Token Program
//	#9  Token Program 2022
//	#10 Vault 0 Mint
//	#11 Vault 1 Mint
//	#12 LP Mint
//
// deposit: https://solscan.io/tx/2Gaqukq8fCjR5SMy9XKPp2LqYZXk1RckD1HibUs5dAw2TBTT4rQFbHXGk7DpqFZm1jVxkTb75mr93UDdyXzs1x5g
// withdraw: https://solscan.io/tx/3j36kyPWRBPQbc81kaB5MbhUycu6ZX294QuhSDNTFis62MP3hZBDsrrbqoXKY6Phc5bVZw3GemsHrhh2KFxYmaHN
var liquidityLayout = common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
	idx.User = 0
	idx.Pool = 2
	idx.UserLp = 3
	idx.UserToken0 = 4
	idx.UserToken1 = 5
	idx.PoolToken0 = 6
	idx.PoolToken1 = 7
	idx.Token0Mint = 10
	idx.Token1Mint = 11
	idx.LpMint = 12
})

// initialize 账户布局：
//
//	#0  Creator
//	#3  Pool State
//	#4  Token 0 Mint
//	#5  Token 1 Mint
//	#6  LP Mint
//	#7  Creator Token 0
//	#8  Creator Token 1
//	#9  Creator LP Token
//	#10 Token 0 Vault
//	#11 Token 1 Vault
//
// 示例交易：https://solscan.io/tx/wyaQtPVNKpbKkMAkC8dWdk7tvYTq9uK99RuebPhTCTAXg9o9Sef8LgqSjvsb6LYzwhuk1EQnfDgf5dMqb2LMSmX
var initializeLayout = common.LayoutOf(true, func(idx *core.PoolAccountIndex) {
	idx.User = 0
	idx.Pool = 3
	idx.Token0Mint = 4
	idx.Token1Mint = 5
	idx.LpMint = 6
	idx.UserToken0 = 7
	idx.UserToken1 = 8
	idx.UserLp = 9
	idx.PoolToken0 = 10
	idx.PoolToken1 = 11
})

var instructionRegistry = discriminator.New[common.Op]("raydiumcpmm", discriminator.EventWidth,
	common.OpEntry("swap_base_input", common.SwapOp("SwapBaseInput", 3, swapIndexes, 10, 11)),
	common.OpEntry("swap_base_output", common.SwapOp("SwapBaseOutput", 3, swapIndexes, 10, 11)),
	common.OpEntry("deposit", common.PoolOp(common.OpAdd, "Deposit", liquidityLayout)),
	common.OpEntry("withdraw", common.PoolOp(common.OpRemove, "Withdraw", liquidityLayout)),
	common.OpEntry("initialize", common.PoolOp(common.OpCreateFunded, "Initialize", initializeLayout)),
)

// RegisterHandlers 注册 Raydium CPMM 程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.RaydiumCPMMProgram] = common.NewOpHandler(instructionRegistry, ammName)
}
