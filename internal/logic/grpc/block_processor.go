package grpc

import (
	"context"
	"errors"
	"time"

	"dex-parser-sol/internal/consts"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/dispatcher"
	"dex-parser-sol/internal/logic/parser"
	"dex-parser-sol/internal/logic/progress"
	"dex-parser-sol/internal/logic/txadapter"
	"dex-parser-sol/internal/mq"
	"dex-parser-sol/internal/svc"
	"dex-parser-sol/internal/types"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/logx"
)

type BlockProcessor struct {
	sc          *svc.ServiceContext
	blockChan   chan *pb.SubscribeUpdateBlock // 接收 block 的 channel
	slotChecker *SlotChecker                  // 可为 nil
	workers     int
	lastSlot    uint64
	ctx         context.Context
	cancel      func(err error)
	logx.Logger
}

func NewBlockProcessor(sc *svc.ServiceContext, blockChan chan *pb.SubscribeUpdateBlock, slotChecker *SlotChecker) *BlockProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	workers := sc.Config.Workers
	if workers <= 0 {
		workers = consts.CpuCount + 2
	}
	return &BlockProcessor{
		sc:          sc,
		blockChan:   blockChan,
		slotChecker: slotChecker,
		workers:     workers,
		Logger:      logx.WithContext(ctx).WithFields(logx.Field("service", "block_processor")),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *BlockProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case block := <-p.blockChan:
			p.procBlock(block)
			if len(p.blockChan) > 10 {
				p.Debugf("block chan len:%v", len(p.blockChan))
			}
		}
	}
}

func (p *BlockProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

func (p *BlockProcessor) procBlock(block *pb.SubscribeUpdateBlock) {
	startTime := time.Now()
	txCtx := buildTxContext(block)

	// 1. 判重：回放或重推的 slot 已有终态时跳过
	should, err := p.sc.ProgressManager.ShouldProcessSlot(p.ctx, block.Slot, txCtx.BlockTime)
	if err != nil {
		p.Errorf("查询 slot 进度失败，按未处理继续: slot=%d, err=%v", block.Slot, err)
	} else if !should {
		p.Infof("slot %d 已处理，跳过", block.Slot)
		return
	}
	p.trackSlotGap(block.Slot)

	// 2. 过滤并转换交易
	raws := p.convertBlock(txCtx, block)

	// 3. 并发解析，缺失池子元数据时补齐后重解析
	results := p.parseAll(raws)

	// 4. 构造并投递 Kafka 消息
	events := dispatcher.CollectEvents(results)
	sent, ok := p.dispatch(block.Slot, events, results)

	elapsed := time.Since(startTime)
	p.sc.Metrics.ObserveBlock(block.Slot, elapsed)
	p.Infof("区块处理耗时: %v, slot: %d, 总tx数量: %d, 解析tx数量: %d, 记录数量: %d",
		elapsed, block.Slot, len(block.Transactions), len(raws), sent)

	// 5. 全部投递成功才标记终态，失败的 slot 留给回放
	if !ok {
		return
	}
	err = p.sc.ProgressManager.MarkSlot(p.ctx, &progress.SlotRecord{
		Slot:        block.Slot,
		Source:      progress.SourceGrpc,
		BlockTime:   txCtx.BlockTime,
		Status:      progress.SlotProcessed,
		TxCount:     len(raws),
		RecordCount: len(events),
	})
	if err != nil {
		p.Errorf("标记 slot 进度失败: slot=%d, err=%v", block.Slot, err)
	}
}

// trackSlotGap 实时流出现 slot 跳号时提交给 SlotChecker 复核
func (p *BlockProcessor) trackSlotGap(slot uint64) {
	if p.lastSlot != 0 && slot > p.lastSlot+1 && p.slotChecker != nil {
		p.slotChecker.Submit(p.lastSlot+1, slot-1)
	}
	if slot > p.lastSlot {
		p.lastSlot = slot
	}
}

func (p *BlockProcessor) convertBlock(txCtx *core.TxContext, block *pb.SubscribeUpdateBlock) []*core.RawTransaction {
	raws := make([]*core.RawTransaction, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		if !txadapter.IsValidGrpcTx(tx) {
			continue
		}
		raw, err := txadapter.FromGrpcTx(txCtx, tx)
		if err != nil {
			p.sc.Metrics.ObserveFailure()
			p.Errorf("转换交易失败: slot=%d, index=%d, err=%v", block.Slot, tx.Index, err)
			continue
		}
		raws = append(raws, raw)
	}
	return raws
}

// parseAll 解析一批交易；存在缺失池子元数据时统一补齐，再只重解析受影响的交易
func (p *BlockProcessor) parseAll(raws []*core.RawTransaction) []*core.ParseResult {
	batch := p.sc.Parser.ParseBatch(raws, p.workers)

	if missing := collectMissingPools(batch); len(missing) > 0 && p.sc.PoolMeta != nil {
		ctx, cancel := context.WithTimeout(p.ctx, p.sc.Config.TimeConf.MetaFetchTimeout())
		filled, err := p.sc.PoolMeta.Fill(ctx, missing)
		cancel()
		if err != nil {
			p.Errorf("补齐池子元数据失败: missing=%d, filled=%d, err=%v", len(missing), filled, err)
		}
		if filled > 0 {
			p.reparseMissing(batch)
		}
	}

	results := make([]*core.ParseResult, 0, len(batch))
	for _, br := range batch {
		if br.Err != nil {
			p.sc.Metrics.ObserveFailure()
			p.Errorf("解析交易失败: slot=%d, index=%d, err=%v", br.Raw.Slot, br.Raw.TxIndex, br.Err)
			continue
		}
		p.sc.Metrics.ObserveResult(br.Result)
		results = append(results, br.Result)
	}
	return results
}

func (p *BlockProcessor) reparseMissing(batch []parser.BatchResult) {
	for i := range batch {
		if batch[i].Err != nil || len(batch[i].Result.MissingPools) == 0 {
			continue
		}
		res, err := p.sc.Parser.ParseTransaction(batch[i].Raw)
		batch[i].Result, batch[i].Err = res, err
	}
}

func collectMissingPools(batch []parser.BatchResult) []types.Pubkey {
	var out []types.Pubkey
	for _, br := range batch {
		if br.Err == nil && br.Result != nil {
			out = append(out, br.Result.MissingPools...)
		}
	}
	return out
}

// dispatch 投递记录与诊断消息，返回成功投递的记录数以及是否全部成功
func (p *BlockProcessor) dispatch(slot uint64, events []*core.Event, results []*core.ParseResult) (int, bool) {
	kc := p.sc.Config.KafkaProducerConf
	jobs, err := dispatcher.BuildRecordJobs(events, kc.Topics.Record, kc.Partitions.Record)
	if err != nil {
		p.Errorf("构造记录消息失败: slot=%d, err=%v", slot, err)
		return 0, false
	}
	diag, err := dispatcher.BuildDiagnosticJobs(results, kc.Topics.Diagnostic, kc.Partitions.Diagnostic)
	if err != nil {
		p.Errorf("构造诊断消息失败: slot=%d, err=%v", slot, err)
	}
	all := append(jobs, diag...)
	if len(all) == 0 {
		return 0, true
	}

	tc := p.sc.Config.TimeConf
	ctx, cancel := context.WithTimeout(p.ctx, tc.SlotDispatchTimeout())
	defer cancel()
	ok, failed := mq.SendKafkaJobs(ctx, p.sc.Producer, all, tc.EventSendTimeout())
	if len(failed) > 0 {
		p.sc.Metrics.KafkaSendFailures.Add(float64(len(failed)))
		p.Errorf("slot %d 投递失败 %d/%d 条, 首个错误: %v", slot, len(failed), len(all), failed[0].Err)
	}
	return len(ok), len(failed) == 0
}

func buildTxContext(block *pb.SubscribeUpdateBlock) *core.TxContext {
	// blockHash 解析失败只打日志，使用零值继续
	blockHash, err := types.HashFromBase58(block.Blockhash)
	if err != nil {
		logx.Errorf("BlockHash 无法解析，将使用零值：slot=%d, blockhash=%s, err=%v",
			block.Slot, block.Blockhash, err)
	}
	txCtx := &core.TxContext{
		Slot:       block.Slot,
		BlockHash:  blockHash,
		ParentSlot: block.ParentSlot,
	}
	if block.BlockTime != nil {
		txCtx.BlockTime = block.BlockTime.Timestamp
	}
	if block.BlockHeight != nil {
		txCtx.BlockHeight = block.BlockHeight.BlockHeight
	}
	return txCtx
}
