package consts

// GrpcAccountInclude 用于 gRPC 交易订阅过滤器
// 只订阅涉及已支持 DEX Program 的交易，Token / System 转账由 CPI 自然带出
var GrpcAccountInclude = []string{
	RaydiumV4ProgramStr,
	RaydiumCPMMProgramStr,
	RaydiumCLMMProgramStr,
	PumpFunProgramStr,
	PumpFunAMMProgramStr,
	MeteoraDLMMProgramStr,
	OrcaWhirlpoolProgramStr,
}
