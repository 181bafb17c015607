// Package metrics 暴露解析流水线的 Prometheus 指标。
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dex-parser-sol/internal/logic/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeromicro/go-zero/core/logx"
)

const defaultNamespace = "dex_parser_sol"

// Metrics 解析流水线指标，使用独立 Registry，便于测试中重复创建
type Metrics struct {
	registry *prometheus.Registry

	TxParsed          prometheus.Counter
	TxFailed          prometheus.Counter // 结构性错误
	Records           *prometheus.CounterVec
	Unknowns          *prometheus.CounterVec
	Warnings          *prometheus.CounterVec
	MissingPools      prometheus.Counter
	LogTruncated      prometheus.Counter
	KafkaSendFailures prometheus.Counter
	BlockParseLatency prometheus.Histogram
	HighestSlot       prometheus.Gauge
	SlotsMissing      prometheus.Counter // 链上有块但实时流未收到
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		TxParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "transactions_parsed_total",
			Help:      "Transactions parsed without structural errors",
		}),
		TxFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "transactions_failed_total",
			Help:      "Transactions rejected with a structural error",
		}),
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "records_total",
			Help:      "Output records by kind and amm",
		}, []string{"kind", "amm"}),
		Unknowns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "unknown_instructions_total",
			Help:      "Instructions of known programs with unregistered discriminators",
		}, []string{"program"}),
		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "warnings_total",
			Help:      "Records skipped by warning kind",
		}, []string{"kind"}),
		MissingPools: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "missing_pools_total",
			Help:      "Pool metadata cache misses reported by parsed transactions",
		}),
		LogTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "log_truncated_total",
			Help:      "Transactions whose program logs were truncated",
		}),
		KafkaSendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatcher",
			Name:      "kafka_send_failures_total",
			Help:      "Kafka messages that failed delivery",
		}),
		BlockParseLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "parse_latency_seconds",
			Help:      "Time to parse all transactions of a block",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		HighestSlot: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "highest_slot",
			Help:      "Highest slot processed",
		}),
		SlotsMissing: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "block",
			Name:      "slots_missing_total",
			Help:      "Slots with a produced block that never arrived on the stream",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveResult 记录一笔成功解析的交易
func (m *Metrics) ObserveResult(res *core.ParseResult) {
	m.TxParsed.Inc()
	for _, e := range res.Events {
		amm := ""
		switch e.Kind {
		case core.EventTrade:
			amm = e.Trade.AMM
		case core.EventPool:
			amm = e.Pool.AMM
		}
		m.Records.WithLabelValues(e.Kind.String(), amm).Inc()
	}
	for _, u := range res.Unknowns {
		m.Unknowns.WithLabelValues(u.ProgramID.String()).Inc()
	}
	for _, w := range res.Warnings {
		m.Warnings.WithLabelValues(string(w.Kind)).Inc()
	}
	m.MissingPools.Add(float64(len(res.MissingPools)))
	if res.LogTruncated {
		m.LogTruncated.Inc()
	}
}

func (m *Metrics) ObserveFailure() {
	m.TxFailed.Inc()
}

func (m *Metrics) ObserveBlock(slot uint64, elapsed time.Duration) {
	m.BlockParseLatency.Observe(elapsed.Seconds())
	m.HighestSlot.Set(float64(slot))
}

// Server 在独立端口上暴露 /metrics，实现 go-zero service.Service
type Server struct {
	srv *http.Server
}

func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return &Server{srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}}
}

func (s *Server) Start() {
	logx.Infof("metrics listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Errorf("metrics server stopped: %v", err)
	}
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}
