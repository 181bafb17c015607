package raydiumclmm

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/types"
)

const ammName = "RaydiumCLMM"

// Raydium CLMM Swap 指令账户布局（swap_v2 前 7 个账户相同）：
//
//	0. 用户钱包（payer）
//	1. AMM 配置账户
//	2. 池子账户
//	3. 用户 token 账户（支出）
//	4. 用户 token 账户（接收）
//	5. 池子 token0 vault
//	6. 池子 token1 vault
//
// 示例交易：https://solscan.io/tx/2ABmxyKMK32gRpTkdNPMgqZNTZGsUP1WftxsFjFYrLSywcpxVHuMgUGqHV6Y21hvdcV77YnnEszjcXoXvRHojQXB
var swapIndexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 3,
	UserToken2AccountIndex: 4,
	PoolToken1AccountIndex: 5,
	PoolToken2AccountIndex: 6,
}

// 集中流动性允许单边注入，池子动作只要求至少一条资金腿
func layout(pool, user0, user1, vault0, vault1, mint0, mint1 int) common.LiquidityLayout {
	return common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.User = 0
		idx.Pool = pool
		idx.UserToken0 = user0
		idx.UserToken1 = user1
		idx.PoolToken0 = vault0
		idx.PoolToken1 = vault1
		idx.Token0Mint = mint0
		idx.Token1Mint = mint1
	})
}

// create_pool 账户布局：#0 creator、#2 pool、#3/#4 mint0/mint1、#5/#6 vault0/vault1。建池不注入资金
var createPoolLayout = common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
	idx.User = 0
	idx.Pool = 2
	idx.Token0Mint = 3
	idx.Token1Mint = 4
	idx.PoolToken0 = 5
	idx.PoolToken1 = 6
})

var instructionRegistry = discriminator.New[common.Op]("raydiumclmm", discriminator.EventWidth,
	common.OpEntry("swap", common.SwapOp("Swap", 2, swapIndexes)),
	common.OpEntry("swap_v2", common.SwapOp("SwapV2", 2, swapIndexes, 11, 12)),
	common.OpEntry("create_pool", common.PoolOp(common.OpCreate, "CreatePool", createPoolLayout)),

	// increase_liquidity: https://solscan.io/tx/29RtWoTifJDAEoV3gihDb1vyp1WnJnaiDK6aCCMf9BmZ1LmJQCmC6sMuFR6fuJiJJeGXPjchxxv5EkyhnrYseJoh
	common.OpEntry("increase_liquidity", common.PoolOp(common.OpAdd, "IncreaseLiquidity", layout(2, 7, 8, 9, 10, -1, -1))),
	common.OpEntry("increase_liquidity_v2", common.PoolOp(common.OpAdd, "IncreaseLiquidityV2", layout(2, 7, 8, 9, 10, 13, 14))),
	common.OpEntry("open_position_with_token22_nft", common.PoolOp(common.OpAdd, "OpenPositionWithToken22Nft", layout(4, 9, 10, 11, 12, 18, 19))),
	common.OpEntry("open_position_v2", common.PoolOp(common.OpAdd, "OpenPositionV2", layout(5, 10, 11, 12, 13, 20, 21))),

	common.OpEntry("decrease_liquidity", common.PoolOp(common.OpRemove, "DecreaseLiquidity", layout(3, 9, 10, 5, 6, -1, -1))),
	common.OpEntry("decrease_liquidity_v2", common.PoolOp(common.OpRemove, "DecreaseLiquidityV2", layout(3, 9, 10, 5, 6, 14, 15))),
)

// RegisterHandlers 注册 Raydium CLMM 程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.RaydiumCLMMProgram] = common.NewOpHandler(instructionRegistry, ammName)
}
