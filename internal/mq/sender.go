package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 表示一条需要发送的 Kafka 消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// KafkaSendResult 表示每条消息的发送结果
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

// SendKafkaJobs 发送一批消息并等待全部 ack。
// 整批共用一个 delivery channel，容量等于消息数，超时后迟到的回执不会阻塞 librdkafka。
// ackTimeout 从最后一条消息入队后开始计时；ctx 结束时未 ack 的消息均计为失败。
func SendKafkaJobs(
	ctx context.Context,
	producer *kafka.Producer,
	jobs []*KafkaJob,
	ackTimeout time.Duration,
) (ok []*KafkaJob, failed []KafkaSendResult) {
	if len(jobs) == 0 {
		return nil, nil
	}

	deliveryChan := make(chan kafka.Event, len(jobs))
	pending := make(map[*KafkaJob]struct{}, len(jobs))
	for _, job := range jobs {
		err := producer.Produce(&kafka.Message{
			TopicPartition: kafka.TopicPartition{
				Topic:     &job.Topic,
				Partition: job.Partition,
			},
			Key:    job.Key,
			Value:  job.Value,
			Opaque: job,
		}, deliveryChan)
		if err != nil {
			failed = append(failed, KafkaSendResult{Job: job, Err: fmt.Errorf("produce error: %w", err)})
			continue
		}
		pending[job] = struct{}{}
	}

	timer := time.NewTimer(ackTimeout)
	defer timer.Stop()

	for len(pending) > 0 {
		select {
		case e := <-deliveryChan:
			msg, isMsg := e.(*kafka.Message)
			if !isMsg {
				continue
			}
			job, _ := msg.Opaque.(*KafkaJob)
			if _, waiting := pending[job]; !waiting {
				continue
			}
			delete(pending, job)
			if msg.TopicPartition.Error != nil {
				failed = append(failed, KafkaSendResult{Job: job, Err: msg.TopicPartition.Error})
			} else {
				ok = append(ok, job)
			}
		case <-timer.C:
			return ok, appendPending(failed, jobs, pending, fmt.Errorf("delivery timeout (>%v)", ackTimeout))
		case <-ctx.Done():
			return ok, appendPending(failed, jobs, pending, fmt.Errorf("ctx cancelled: %w", ctx.Err()))
		}
	}
	return ok, failed
}

// appendPending 按原始顺序把未 ack 的消息记为失败
func appendPending(failed []KafkaSendResult, jobs []*KafkaJob, pending map[*KafkaJob]struct{}, err error) []KafkaSendResult {
	for _, job := range jobs {
		if _, waiting := pending[job]; waiting {
			failed = append(failed, KafkaSendResult{Job: job, Err: err})
		}
	}
	return failed
}
