package orcawhirlpool

import (
	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/eventparser/common"
	"dex-parser-sol/internal/pkg/discriminator"
	"dex-parser-sol/internal/types"
)

const ammName = "OrcaWhirlpool"

// swap 账户结构:
//
//	0 - Token Program
//	1 - Token Authority
//	2 - Whirlpool
//	3 - Token Owner Account A
//	4 - Token Vault A
//	5 - Token Owner Account B
//	6 - Token Vault B
//
// swap: https://solscan.io/tx/62dJLjdMdhY9HwpHjXmTFqpEidxvyMTxsX4eoLzVH9yXmdoBmUYMBgphXnqNmQGG7GJJLtHWxi5dkWkFMKLoxezG
var swapIndexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 3,
	UserToken2AccountIndex: 5,
	PoolToken1AccountIndex: 4,
	PoolToken2AccountIndex: 6,
}

// swap_v2 在前面多出 token program B、memo 与两个 mint：
//
//	4  - Whirlpool
//	5  - Token Mint A
//	6  - Token Mint B
//	7  - Token Owner Account A
//	8  - Token Vault A
//	9  - Token Owner Account B
//	10 - Token Vault B
//
// swap2: https://solscan.io/tx/ZP5kKJdy5oQ9AkMqW2tEMKobNdbiXcVmiX4zhhYpk3R1v8P1vv8nQqaDFWMg9upWHj3g3sYGQevw9Jeht4H3hx6
var swapV2Indexes = common.SwapInstructionIndex{
	UserToken1AccountIndex: 7,
	UserToken2AccountIndex: 9,
	PoolToken1AccountIndex: 8,
	PoolToken2AccountIndex: 10,
}

// initialize_pool: #1/#2 mint A/B、#3 funder、#4 whirlpool、#5/#6 vault A/B
// 示例交易：https://solscan.io/tx/Miz5QpAfzCXHAuaZB9erP2xjy66PgGzJokyaS8yBzkgozzPGafivYLbNhBx1f4cMu14cfifEEPfeDNDKqVjfMYi
//
// initialize_pool_v2: #1/#2 mint A/B、#5 funder、#6 whirlpool、#7/#8 vault A/B
// 示例交易：https://solscan.io/tx/t1kFBWA9e4iNytwDunyy2xu48UgUxfkj1kPLm8d9cvLM6bRYwusr6A2A8K26GPwt4QL2mv3gaerpS4xUJMd8pbg
func createLayout(pool, funder, vaultA, vaultB int) common.LiquidityLayout {
	return common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.Pool = pool
		idx.Token0Mint = 1
		idx.Token1Mint = 2
		idx.User = funder
		idx.PoolToken0 = vaultA
		idx.PoolToken1 = vaultB
	})
}

// increase / decrease liquidity 的账户布局相同：
//
//	v1: #0 whirlpool、#2 position authority、#5/#6 用户 token A/B、#7/#8 vault A/B
//	v2: #0 whirlpool、#4 position authority、#7/#8 mint A/B、#9/#10 用户 token A/B、#11/#12 vault A/B
//
// increase_liquidity: https://solscan.io/tx/4hP6pnim4Mdaqe3HGsnU23VETYXYKtpP7xfknDn6MUaoshdZTqR1zkPqs2JiK7DMBTGsoddbFbmekhc56XNcARXV
// decrease_liquidity_v2: https://solscan.io/tx/4SyHcE39eFiwzKBuZE7VaJmfY5AtV4ps5BEExRk7NWPayFPZKnfcLERCYQiZdLJxvnRscEVSfgkwtZ7gGsbSPiEQ
var (
	liquidityLayout = common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.Pool = 0
		idx.User = 2
		idx.UserToken0 = 5
		idx.UserToken1 = 6
		idx.PoolToken0 = 7
		idx.PoolToken1 = 8
	})
	liquidityV2Layout = common.LayoutOf(false, func(idx *core.PoolAccountIndex) {
		idx.Pool = 0
		idx.User = 4
		idx.Token0Mint = 7
		idx.Token1Mint = 8
		idx.UserToken0 = 9
		idx.UserToken1 = 10
		idx.PoolToken0 = 11
		idx.PoolToken1 = 12
	})
)

var instructionRegistry = discriminator.New[common.Op]("orcawhirlpool", discriminator.EventWidth,
	common.OpEntry("swap", common.SwapOp("Swap", 2, swapIndexes)),
	common.OpEntry("swap_v2", common.SwapOp("SwapV2", 4, swapV2Indexes, 5, 6)),
	common.OpEntry("initialize_pool", common.PoolOp(common.OpCreate, "InitializePool", createLayout(4, 3, 5, 6))),
	common.OpEntry("initialize_pool_v2", common.PoolOp(common.OpCreate, "InitializePoolV2", createLayout(6, 5, 7, 8))),
	common.OpEntry("increase_liquidity", common.PoolOp(common.OpAdd, "IncreaseLiquidity", liquidityLayout)),
	common.OpEntry("increase_liquidity_v2", common.PoolOp(common.OpAdd, "IncreaseLiquidityV2", liquidityV2Layout)),
	common.OpEntry("decrease_liquidity", common.PoolOp(common.OpRemove, "DecreaseLiquidity", liquidityLayout)),
	common.OpEntry("decrease_liquidity_v2", common.PoolOp(common.OpRemove, "DecreaseLiquidityV2", liquidityV2Layout)),
)

// RegisterHandlers 注册 Orca Whirlpool 程序的指令解析器
func RegisterHandlers(m map[types.Pubkey]common.InstructionHandler) {
	m[consts.OrcaWhirlpoolProgram] = common.NewOpHandler(instructionRegistry, ammName)
}
