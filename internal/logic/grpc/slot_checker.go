package grpc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	maxPendingRanges = 200
	maxRangeSize     = 10000 // getBlocks 单次查询的 slot 跨度上限
	checkDelay       = 30 * time.Second
	checkInterval    = 10 * time.Second
)

type SlotRange struct {
	From     uint64
	To       uint64
	SubmitAt time.Time
}

// BlockLister 列出闭区间内实际产出区块的 slot
type BlockLister interface {
	GetBlocks(ctx context.Context, from, to uint64) ([]uint64, error)
}

type rpcBlockLister struct {
	client rpc.RpcClient
}

func (l rpcBlockLister) GetBlocks(ctx context.Context, from, to uint64) ([]uint64, error) {
	resp, err := l.client.GetBlocks(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// SlotChecker 对实时流中的 slot 跳号做延迟复核：
// 链上确实产出了区块却没有收到的 slot 视为漏扫，其余为空块。
type SlotChecker struct {
	lister    BlockLister
	rangeCh   chan SlotRange
	ctx       context.Context
	cancel    context.CancelFunc
	onMissing func(slot uint64) // 可为 nil
	logx.Logger
}

func NewSlotChecker(endpoint string, onMissing func(slot uint64)) *SlotChecker {
	return newSlotChecker(rpcBlockLister{client: rpc.NewRpcClient(endpoint)}, onMissing)
}

func newSlotChecker(lister BlockLister, onMissing func(slot uint64)) *SlotChecker {
	ctx, cancel := context.WithCancel(context.Background())
	return &SlotChecker{
		lister:    lister,
		rangeCh:   make(chan SlotRange, 300),
		ctx:       ctx,
		cancel:    cancel,
		onMissing: onMissing,
		Logger:    logx.WithContext(ctx).WithFields(logx.Field("service", "slot_checker")),
	}
}

func (s *SlotChecker) Start() {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	var pending []SlotRange
	for {
		select {
		case <-s.ctx.Done():
			s.Infof("stopped")
			return

		case r := <-s.rangeCh:
			if len(pending) >= maxPendingRanges {
				s.Errorf("too many pending ranges (%d), drop [%d, %d]", len(pending), r.From, r.To)
				continue
			}
			pending = append(pending, r)

		case now := <-ticker.C:
			// 提交后等待 checkDelay，给 RPC 节点留出确认时间
			var ready []SlotRange
			ready, pending = splitReady(pending, now)
			if len(ready) > 0 {
				s.checkSlotRanges(ready)
			}
		}
	}
}

func (s *SlotChecker) Stop() {
	s.cancel()
}

// Submit 提交一个 slot 范围进行复核，闭区间 [from, to]
func (s *SlotChecker) Submit(from, to uint64) {
	if from > to {
		s.Errorf("invalid slot range: from (%d) > to (%d)", from, to)
		return
	}
	select {
	case s.rangeCh <- SlotRange{From: from, To: to, SubmitAt: time.Now()}:
	default:
		s.Errorf("slot range channel full, dropped: [%d, %d]", from, to)
	}
}

func splitReady(ranges []SlotRange, now time.Time) (ready, pending []SlotRange) {
	for _, r := range ranges {
		if now.Sub(r.SubmitAt) >= checkDelay {
			ready = append(ready, r)
		} else {
			pending = append(pending, r)
		}
	}
	return ready, pending
}

func (s *SlotChecker) checkSlotRanges(ranges []SlotRange) {
	produced := make(map[uint64]struct{})
	var failed []SlotRange

	for _, r := range mergeRanges(ranges) {
		if s.ctx.Err() != nil {
			return
		}
		blocks, err := s.getBlocksWithRetry(r.From, r.To, 3)
		if err != nil {
			s.Errorf("getBlocks [%d, %d] failed after retries: %v", r.From, r.To, err)
			failed = append(failed, r)
			continue
		}
		for _, slot := range blocks {
			produced[slot] = struct{}{}
		}
	}

	for _, r := range ranges {
		for slot := r.From; slot <= r.To; slot++ {
			if slotInRanges(slot, failed) {
				continue
			}
			if _, ok := produced[slot]; !ok {
				continue
			}
			s.Errorf("slot %d is missing，疑似漏扫", slot)
			if s.onMissing != nil {
				s.onMissing(slot)
			}
		}
	}
}

// slotInRanges ranges 须已排序且互不相交
func slotInRanges(slot uint64, ranges []SlotRange) bool {
	i := sort.Search(len(ranges), func(i int) bool {
		return ranges[i].From > slot
	})
	return i > 0 && slot <= ranges[i-1].To
}

func (s *SlotChecker) getBlocksWithRetry(from, to uint64, maxRetries int) (blocks []uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("getBlocks panic: %v", r)
		}
	}()

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(s.ctx, 6*time.Second)
		blocks, err = s.lister.GetBlocks(ctx, from, to)
		cancel()
		if err == nil || attempt >= maxRetries {
			return blocks, err
		}

		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case <-time.After(300 * time.Millisecond):
		}
	}
}

// mergeRanges 排序并合并相交或相邻的范围，再按 maxRangeSize 切分，控制单次 getBlocks 的查询规模
func mergeRanges(ranges []SlotRange) []SlotRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]SlotRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].From < sorted[j].From
	})

	merged := []SlotRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.From <= last.To+1 {
			last.To = max(last.To, r.To)
			continue
		}
		merged = append(merged, r)
	}

	out := make([]SlotRange, 0, len(merged))
	for _, r := range merged {
		for from := r.From; from <= r.To; from += maxRangeSize {
			to := min(from+maxRangeSize-1, r.To)
			out = append(out, SlotRange{From: from, To: to, SubmitAt: r.SubmitAt})
			if to == r.To {
				break
			}
		}
	}
	return out
}
