package replay

import (
	"encoding/json"
	"io"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/logic/parser"
	"dex-parser-sol/internal/types"
)

// Record 输出中的一条成交或池子事件
type Record struct {
	ID   uint64 `json:"id"`
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Output 一笔交易的回放输出，与输入顺序一致
type Output struct {
	Signature   string            `json:"signature"`
	TxIndex     uint32            `json:"txIndex"`
	Error       string            `json:"error,omitempty"`
	Records     []Record          `json:"records,omitempty"`
	Diagnostics *core.ParseResult `json:"diagnostics,omitempty"` // 仅在存在未知指令、告警等问题时输出
}

// Run 使用文件中预置的池子元数据解析全部交易
func Run(f *File, workers int) ([]Output, error) {
	raws, err := f.RawTransactions()
	if err != nil {
		return nil, err
	}
	capacity := len(f.Pools)
	if capacity < cache.DefaultPoolCacheCapacity {
		capacity = cache.DefaultPoolCacheCapacity
	}
	pools := cache.NewPoolCache(capacity)
	pools.SetBatch(f.PoolInfos())

	batch := parser.New(pools).ParseBatch(raws, workers)
	outs := make([]Output, len(batch))
	for i, br := range batch {
		outs[i] = toOutput(br)
	}
	return outs, nil
}

func toOutput(br parser.BatchResult) Output {
	out := Output{
		Signature: types.Signature(br.Raw.Signature).String(),
		TxIndex:   br.Raw.TxIndex,
	}
	if br.Err != nil {
		out.Error = br.Err.Error()
		return out
	}
	res := br.Result
	out.Records = make([]Record, 0, len(res.Events))
	for _, e := range res.Events {
		out.Records = append(out.Records, Record{ID: e.ID, Kind: e.Kind.String(), Data: e.Record()})
	}
	if res.HasDiagnostics() {
		out.Diagnostics = res
	}
	return out
}

// WriteJSONLines 每笔交易输出一行 JSON
func WriteJSONLines(w io.Writer, outs []Output) error {
	enc := json.NewEncoder(w)
	for i := range outs {
		if err := enc.Encode(&outs[i]); err != nil {
			return err
		}
	}
	return nil
}
