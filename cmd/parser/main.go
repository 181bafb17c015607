package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"dex-parser-sol/internal/config"
	"dex-parser-sol/internal/logic/grpc"
	"dex-parser-sol/internal/metrics"
	"dex-parser-sol/internal/pkg/logger"
	"dex-parser-sol/internal/svc"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/parser.yaml", "the config file")

// progressLoops 把进度落库与历史清理包装为 go-zero Service
type progressLoops struct {
	sc     *svc.ServiceContext
	ctx    context.Context
	cancel context.CancelFunc
}

func (l *progressLoops) Start() {
	pc := l.sc.Config.ProgressConf
	l.sc.ProgressManager.StartGCLoop(l.ctx, time.Duration(pc.GCIntervalSec)*time.Second)
	l.sc.ProgressManager.StartFlushLoop(l.ctx, time.Duration(pc.FlushIntervalSec)*time.Second)
}

func (l *progressLoops) Stop() {
	l.cancel()
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.ParserConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	blockChan := make(chan *pb.SubscribeUpdateBlock, 200)

	sg := zerosvc.NewServiceGroup()

	var slotChecker *grpc.SlotChecker
	if c.CacheConf.RpcEndpoint != "" {
		slotChecker = grpc.NewSlotChecker(c.CacheConf.RpcEndpoint, func(uint64) {
			serviceContext.Metrics.SlotsMissing.Inc()
		})
		sg.Add(slotChecker)
	}

	grpcService, err := grpc.NewGrpcStreamManager(c.Grpc, blockChan)
	if err != nil {
		panic(err)
	}
	sg.Add(grpcService)
	sg.Add(grpc.NewBlockProcessor(serviceContext, blockChan, slotChecker))
	sg.Add(metrics.NewServer(c.MetricsAddr, serviceContext.Metrics))

	ctx, cancel := context.WithCancel(context.Background())
	sg.Add(&progressLoops{sc: serviceContext, ctx: ctx, cancel: cancel})

	logx.Infof("Starting parser service")

	// ServiceGroup.Start 会阻塞，放到协程中等待退出信号
	go sg.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Info("Shutting down services...")
	sg.Stop()
}
