// Package dispatcher 把解析结果编码为按池子地址分区的 Kafka 消息。
package dispatcher

import (
	"fmt"

	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/mq"
	"dex-parser-sol/internal/utils"
)

// BuildRecordJobs 为每条事件构造一个 KafkaJob。
// 分区由 Key（池子地址）决定，同一池子的记录落在同一分区，保持执行顺序；
// Value 为 4 字节 kind 前缀 + JSON。
func BuildRecordJobs(events []*core.Event, topic string, partitions int) ([]*mq.KafkaJob, error) {
	if partitions <= 0 {
		partitions = 1
	}
	jobs := make([]*mq.KafkaJob, 0, len(events))
	for _, evt := range events {
		value, err := utils.EncodeRecord(uint32(evt.Kind), evt.Record())
		if err != nil {
			return nil, fmt.Errorf("build record job %d: %w", evt.ID, err)
		}
		jobs = append(jobs, &mq.KafkaJob{
			Topic:     topic,
			Partition: int32(utils.PartitionHashBytes(evt.Key, uint32(partitions))),
			Key:       evt.Key,
			Value:     value,
		})
	}
	return jobs, nil
}

// BuildDiagnosticJobs 为存在未知指令、告警、缺失池子或日志截断的交易构造诊断消息，key 为交易签名
func BuildDiagnosticJobs(results []*core.ParseResult, topic string, partitions int) ([]*mq.KafkaJob, error) {
	if partitions <= 0 {
		partitions = 1
	}
	var jobs []*mq.KafkaJob
	for _, res := range results {
		if res == nil || !res.HasDiagnostics() {
			continue
		}
		value, err := utils.EncodeRecord(uint32(core.EventDiagnostic), res)
		if err != nil {
			return nil, fmt.Errorf("build diagnostic job %s: %w", res.Signature, err)
		}
		key := []byte(res.Signature)
		jobs = append(jobs, &mq.KafkaJob{
			Topic:     topic,
			Partition: int32(res.TxIndex % uint32(partitions)),
			Key:       key,
			Value:     value,
		})
	}
	return jobs, nil
}

// CollectEvents 按交易顺序拼接一批结果中的全部事件
func CollectEvents(results []*core.ParseResult) []*core.Event {
	total := 0
	for _, res := range results {
		if res != nil {
			total += len(res.Events)
		}
	}
	events := make([]*core.Event, 0, total)
	for _, res := range results {
		if res != nil {
			events = append(events, res.Events...)
		}
	}
	return events
}
