package utils

import (
	"fmt"
	"strconv"
)

// ParseUint64 解析十进制 u64 字符串
func ParseUint64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid u64 %q: %w", s, err)
	}
	return v, nil
}
