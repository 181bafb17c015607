package utils

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// EncodeRecord 将记录编码为带类型前缀的二进制数据：
// - 前 4 字节为记录类型（uint32，小端序）
// - 后续为 JSON 序列化数据（数值字段均为整数或十进制字符串）
func EncodeRecord(kind uint32, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("EncodeRecord: marshal %T: %w", v, err)
	}
	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, kind)
	return append(buf, body...), nil
}

// DecodeRecordKind 读取类型前缀，返回类型与 JSON 正文
func DecodeRecordKind(data []byte) (uint32, []byte, error) {
	if len(data) < 4 {
		return 0, nil, fmt.Errorf("DecodeRecordKind: payload too short: %d", len(data))
	}
	return binary.LittleEndian.Uint32(data[:4]), data[4:], nil
}
