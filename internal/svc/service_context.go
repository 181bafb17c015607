package svc

import (
	"context"
	"fmt"
	"time"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/config"
	"dex-parser-sol/internal/logic/parser"
	"dex-parser-sol/internal/logic/progress"
	"dex-parser-sol/internal/metrics"
	"dex-parser-sol/internal/mq"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/service"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含解析服务运行所需的全部资源
type ServiceContext struct {
	Config          config.ParserConfig
	PoolCache       *cache.PoolCache
	Parser          *parser.Parser
	Producer        *kafka.Producer
	Redis           redis.UniversalClient // 未配置时为 nil
	ProgressDB      *progress.DBProgressStore
	ProgressManager *progress.ProgressManager
	PoolMeta        *service.PoolMetaService
	Metrics         *metrics.Metrics
}

// NewServiceContext 按配置初始化各组件；Redis、Postgres、RPC 未配置时对应能力降级
func NewServiceContext(c config.ParserConfig) (*ServiceContext, error) {
	sc := &ServiceContext{
		Config:    c,
		PoolCache: cache.NewPoolCache(c.CacheConf.PoolCapacity),
		Metrics:   metrics.New(""),
	}
	sc.Parser = parser.New(sc.PoolCache)

	// 1. Kafka 生产者
	producer, err := mq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
	if err != nil {
		logger.Errorf("Kafka producer 初始化失败: %v", err)
		return nil, err
	}
	sc.Producer = producer

	// 2. Redis（slot 判重与池子元数据）
	var redisStore *progress.RedisProgressStore
	if c.RedisAddr != "" {
		sc.Redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := sc.Redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			sc.Close()
			return nil, fmt.Errorf("ping redis %s: %w", c.RedisAddr, err)
		}
		redisStore = progress.NewRedisProgressStore(sc.Redis, time.Duration(c.ProgressConf.SlotTTLSec)*time.Second)
	}

	// 3. PostgreSQL（slot 进度落库）
	if c.PostgresDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := progress.NewDBProgressStore(ctx, c.PostgresDSN)
		cancel()
		if err != nil {
			sc.Close()
			return nil, err
		}
		sc.ProgressDB = db
	}
	sc.ProgressManager = progress.NewProgressManager(redisStore, sc.ProgressDB, c.ProgressConf.RecentThresholdSec)

	// 4. 池子元数据补齐
	var fetcher service.PoolFetcher
	if c.CacheConf.RpcEndpoint != "" {
		fetcher = service.NewRpcPoolFetcher(c.CacheConf.RpcEndpoint, c.TimeConf.MetaFetchTimeout())
	}
	sc.PoolMeta = service.NewPoolMetaService(sc.Redis, fetcher, sc.PoolCache,
		time.Duration(c.CacheConf.PoolMetaTTLSec)*time.Second)

	logger.Infof("解析服务上下文初始化完成: redis=%t, postgres=%t, rpc=%t",
		sc.Redis != nil, sc.ProgressDB != nil, fetcher != nil)
	return sc, nil
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Producer != nil {
		sc.Producer.Flush(3000)
		sc.Producer.Close()
	}
	if sc.Redis != nil {
		_ = sc.Redis.Close()
	}
	if sc.ProgressDB != nil {
		sc.ProgressDB.Close()
	}
}
