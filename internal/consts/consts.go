package consts

import "runtime"

const (
	ChainIDSolana uint32 = 100000

	// SOLDecimals 原生 SOL（lamports）精度，固定为 9
	SOLDecimals uint8 = 9

	// PumpfunTokenDecimals pump.fun 发射的代币统一为 6 位精度
	PumpfunTokenDecimals uint8 = 6
)

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()
