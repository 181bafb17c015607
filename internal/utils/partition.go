package utils

import "hash/fnv"

// PartitionHashBytes 为 Kafka 消息选择分区。
// 32 字节的地址本身分布均匀，直接取其中 4 个字节；其它长度的 key（如 base58 签名）走 FNV-1a。
func PartitionHashBytes(b []byte, mod uint32) uint32 {
	if mod <= 1 || len(b) == 0 {
		return 0
	}

	var hash uint32
	if len(b) == 32 {
		hash = uint32(b[7])<<24 | uint32(b[15])<<16 | uint32(b[19])<<8 | uint32(b[27])
	} else {
		h := fnv.New32a()
		_, _ = h.Write(b)
		hash = h.Sum32()
	}
	if mod&(mod-1) == 0 {
		return hash & (mod - 1)
	}
	return hash % mod
}
