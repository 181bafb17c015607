package config

import (
	"time"

	"dex-parser-sol/internal/mq"
	"dex-parser-sol/internal/pkg/logger"
)

// go-zero conf 按 json tag 映射 yaml 键

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录，为空时输出到 stdout
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// KafkaProducerConfig Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers   string `json:"brokers"`             // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `json:"batch_size,optional"` // 批处理大小（单位字节）
	LingerMs  int    `json:"linger_ms,default=5"` // 批处理最大延迟（毫秒）
	ClientID  string `json:"client_id,optional"`  // 为空时按本机 IP 生成

	Topics struct {
		Record     string `json:"record,default=dex-parser-records"`         // 成交与池子事件
		Diagnostic string `json:"diagnostic,default=dex-parser-diagnostics"` // 未知指令、告警
	} `json:"topics"`

	Partitions struct {
		Record     int `json:"record,default=16"`
		Diagnostic int `json:"diagnostic,default=4"`
	} `json:"partitions"`
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		ClientID:  c.ClientID,
		Topics: []mq.TopicSpec{
			{Topic: c.Topics.Record, Partitions: c.Partitions.Record},
			{Topic: c.Topics.Diagnostic, Partitions: c.Partitions.Diagnostic},
		},
	}
}

// TimeConfig 各种超时配置（单位：毫秒）
type TimeConfig struct {
	SlotDispatchTimeoutMs int `json:"slot_dispatch_timeout_ms,default=3000"` // 每个 slot 投递的最大耗时
	EventSendTimeoutMs    int `json:"event_send_timeout_ms,default=2000"`    // 一批消息入队后等待全部 ack 的超时
	MetaFetchTimeoutMs    int `json:"meta_fetch_timeout_ms,default=1500"`    // 缺失池子元数据的拉取超时
}

func (c TimeConfig) SlotDispatchTimeout() time.Duration {
	return time.Duration(c.SlotDispatchTimeoutMs) * time.Millisecond
}

func (c TimeConfig) EventSendTimeout() time.Duration {
	return time.Duration(c.EventSendTimeoutMs) * time.Millisecond
}

func (c TimeConfig) MetaFetchTimeout() time.Duration {
	return time.Duration(c.MetaFetchTimeoutMs) * time.Millisecond
}

// CacheConfig 池子元数据缓存
type CacheConfig struct {
	PoolCapacity   int    `json:"pool_capacity,default=50000"`      // 进程内 LRU 容量
	PoolMetaTTLSec int    `json:"pool_meta_ttl_sec,default=604800"` // Redis pool:meta 过期时间
	RpcEndpoint    string `json:"rpc_endpoint,optional"`            // 为空时不走 RPC 拉取
}

// ProgressConfig slot 进度管理
type ProgressConfig struct {
	RecentThresholdSec int `json:"recent_threshold_sec,default=60"` // 判定为"近期 block"的时间阈值（秒）
	SlotTTLSec         int `json:"slot_ttl_sec,default=259200"`     // Redis slot 状态过期时间
	FlushIntervalSec   int `json:"flush_interval_sec,default=2"`    // 缓冲落库间隔
	GCIntervalSec      int `json:"gc_interval_sec,default=3600"`    // 历史记录清理间隔
}

// GrpcConfig gRPC 客户端连接相关配置
type GrpcConfig struct {
	Endpoint string `json:"endpoint"`         // gRPC 服务端地址
	XToken   string `json:"x_token,optional"` // x-token 认证

	// 应用级逻辑心跳（ping）配置
	StreamPingIntervalSec int `json:"stream_ping_interval_sec,default=10"`

	// gRPC Keepalive 底层连接检测配置
	KeepalivePingIntervalSec int `json:"keepalive_ping_interval_sec,default=15"`
	KeepalivePingTimeoutSec  int `json:"keepalive_ping_timeout_sec,default=5"`

	// gRPC 窗口大小调优（用于大数据流推送）
	InitialWindowSize     int `json:"initial_window_size,default=16777216"`
	InitialConnWindowSize int `json:"initial_conn_window_size,default=33554432"`

	// 消息体大小限制
	MaxCallSendMsgSize int `json:"max_call_send_msg_size,default=4194304"`
	MaxCallRecvMsgSize int `json:"max_call_recv_msg_size,default=134217728"`

	// 超时与重连策略
	ReconnectIntervalSec int `json:"reconnect_interval_sec,default=2"`
	ConnectTimeoutSec    int `json:"connect_timeout_sec,default=10"`
	SendTimeoutSec       int `json:"send_timeout_sec,default=5"`
	RecvTimeoutSec       int `json:"recv_timeout_sec,default=30"`
	MaxLatencyWarnMs     int `json:"max_latency_warn_ms,default=2000"`
	MaxLatencyDropMs     int `json:"max_latency_drop_ms,default=10000"`
}

// ParserConfig 是主配置结构体，用于驱动解析服务
type ParserConfig struct {
	LogConf           LogConfig           `json:"logger"`
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer"`
	TimeConf          TimeConfig          `json:"time_conf"`
	CacheConf         CacheConfig         `json:"cache"`
	ProgressConf      ProgressConfig      `json:"progress"`
	Grpc              GrpcConfig          `json:"grpc"`

	RedisAddr     string `json:"redis_addr,optional"`   // 为空时不使用 Redis
	RedisPassword string `json:"redis_password,optional"`
	PostgresDSN   string `json:"postgres_dsn,optional"` // 为空时不落库进度
	MetricsAddr   string `json:"metrics_addr,default=:9102"`
	Workers       int    `json:"workers,optional"`      // 解析协程数，<=0 时为 CPU 数 + 2
}
