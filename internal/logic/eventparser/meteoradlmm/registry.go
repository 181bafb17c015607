package meteoradlmm

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/types"
)

const ammName = "MeteoraDLMM"

// 各 swap 指令前 8 个账户结构一致：
//
//	0 - Lb Pair（池子地址）
//	1 - Bin Array Bitmap Extension
//	2 - Reserve X
//	3 - Reserve Y
//	4 - User Token In
//	5 - User Token Out
//	6 - Token X Mint
//	7 - Token Y Mint
//
// swap: https://solscan.io/tx/3CYS44DoNAtXpeA3LvUW12oXr7KpjjsCXypnhaCQaJLXf13JSjhKi9txvRReQ4pyNJT4Cn4QUH5U4K84Q8vGM5Te
// swap2: https://solscan.io/tx/553sphiE347zoBzYfzFrDq99UBYYvE3sFpP2mCcsDBR8V8pSQSZD67UvYUTNra6eCkq74aVsUagfZQumzgTvTQkn
var swapIndexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 4,
	UserToken2AccountIndex: 5,
	PoolToken1AccountIndex: 2,
	PoolToken2AccountIndex: 3,
}

func swapOp(name string) common.Op {
	return common.SwapOp(name, 0, swapIndexes, 6, 7)
}

// 建池指令：lb pair、两个 mint、两个 reserve、创建者
// initialize_lb_pair2: https://solscan.io/tx/o7D5om3waD7MXBH3mkGRjUxW1UyuwPu3gmLHW2hYjL9j6vqwecqGowrgsJvFJ445bjZZuXhWk2KhrRAmSDr42ev
// initialize_permission_lb_pair: https://solscan.io/tx/3VS2kS4fZeEF3mtwN5ec7U83aY1kikhiiKeA7ujanKohVCcFNUSSAxdQMzknmQGyG91gLW52c8uBCpquvwC6n1fy
func createLayout(pool, mintX, reserveX, user int) common.LiquidityLayout {
	return common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.Pool = pool
		idx.Token0Mint = mintX
		idx.Token1Mint = mintX + 1
		idx.PoolToken0 = reserveX
		idx.PoolToken1 = reserveX + 1
		idx.User = user
	})
}

// 双边加减流动性的账户布局一致，只有 sender 的位置不同（带 2 后缀的版本为 #9，其余为 #11）：
//
//	#1 Lb Pair
//	#3 User Token X
//	#4 User Token Y
//	#5 Reserve X
//	#6 Reserve Y
//	#7 Token X Mint
//	#8 Token Y Mint
//
// add_liquidity2: https://solscan.io/tx/3kwXqfbmpPBwz7XV1oG94fNooVShaWmSmtrPoNKyCsXwUUsJhAFjq2D1BSK5zGmxBY3WQbtKMZniQGkvSEa5iHbF
// remove_liquidity: https://solscan.io/tx/uzMqzyXc1XXcxC7efSGjJFpBxVKEPAqjqmm1P2kyXgi184QjAqhbAHvJDJggBntYTPQvM3aqDLmDY1ibLydZTZZ
func liquidityLayout(sender int) common.LiquidityLayout {
	return common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.Pool = 1
		idx.UserToken0 = 3
		idx.UserToken1 = 4
		idx.PoolToken0 = 5
		idx.PoolToken1 = 6
		idx.Token0Mint = 7
		idx.Token1Mint = 8
		idx.User = sender
	})
}

var instructionRegistry = discriminator.New[common.Op]("meteoradlmm", discriminator.EventWidth,
	common.OpEntry("swap", swapOp("Swap")),
	common.OpEntry("swap2", swapOp("Swap2")),
	common.OpEntry("swap_exact_out", swapOp("SwapExactOut")),
	common.OpEntry("swap_exact_out2", swapOp("SwapExactOut2")),
	common.OpEntry("swap_with_price_impact2", swapOp("SwapWithPriceImpact2")),

	common.OpEntry("initialize_lb_pair2", common.PoolOp(common.OpCreate, "InitializeLbPair2", createLayout(0, 2, 4, 8))),
	common.OpEntry("initialize_customizable_permissionless_lb_pair",
		common.PoolOp(common.OpCreate, "InitializeCustomPair", createLayout(0, 2, 4, 8))),
	common.OpEntry("initialize_customizable_permissionless_lb_pair2",
		common.PoolOp(common.OpCreate, "InitializeCustomPair2", createLayout(0, 2, 4, 8))),
	common.OpEntry("initialize_permission_lb_pair", common.PoolOp(common.OpCreate, "InitializePermissionPair", createLayout(1, 3, 5, 8))),

	common.OpEntry("add_liquidity", common.PoolOp(common.OpAdd, "AddLiquidity", liquidityLayout(11))),
	common.OpEntry("add_liquidity2", common.PoolOp(common.OpAdd, "AddLiquidity2", liquidityLayout(9))),
	common.OpEntry("add_liquidity_by_weight", common.PoolOp(common.OpAdd, "AddLiquidityByWeight", liquidityLayout(11))),
	common.OpEntry("add_liquidity_by_strategy", common.PoolOp(common.OpAdd, "AddLiquidityByStrategy", liquidityLayout(11))),
	common.OpEntry("add_liquidity_by_strategy2", common.PoolOp(common.OpAdd, "AddLiquidityByStrategy2", liquidityLayout(9))),

	common.OpEntry("remove_liquidity", common.PoolOp(common.OpRemove, "RemoveLiquidity", liquidityLayout(11))),
	common.OpEntry("remove_liquidity2", common.PoolOp(common.OpRemove, "RemoveLiquidity2", liquidityLayout(9))),
	common.OpEntry("remove_liquidity_by_range", common.PoolOp(common.OpRemove, "RemoveLiquidityByRange", liquidityLayout(11))),
	common.OpEntry("remove_liquidity_by_range2", common.PoolOp(common.OpRemove, "RemoveLiquidityByRange2", liquidityLayout(9))),
)

// RegisterHandlers 注册 Meteora DLMM 程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.MeteoraDLMMProgram] = common.NewOpHandler(instructionRegistry, ammName)
}
