package core

import "errors"

var (
	// ErrAccountIndexOutOfRange 交易结构不一致（账户下标越界等），整笔交易无法继续解析
	ErrAccountIndexOutOfRange = errors.New("account index out of range")
	// ErrInvalidTransaction 交易缺少签名、账户等必要字段
	ErrInvalidTransaction = errors.New("invalid transaction")
)
