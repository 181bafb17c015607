package tools

import (
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatRaw 无符号整数的精确十进制字符串
func FormatRaw(raw uint64) string {
	return strconv.FormatUint(raw, 10)
}

// FormatAmount 返回 raw × 10^-decimals 的十进制字符串。
// 去掉尾零，整数不带小数点：1_000_000_000 / 9 → "1"，500_000_000 / 6 → "500"，1_500_000 / 6 → "1.5"。
func FormatAmount(raw uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
	return d.String()
}

// SumRaw 以字符串形式累加多个原始数量，避免 uint64 溢出
func SumRaw(amounts ...uint64) string {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, new(big.Int).SetUint64(a))
	}
	return total.String()
}

// ScaleRawString 对十进制原始数量字符串按精度缩放，非法输入返回 false
func ScaleRawString(raw string, decimals uint8) (string, bool) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return "", false
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).String(), true
}
