// Package replay 读写 YAML 交易回放文件，用于离线复现解析结果。
// 公钥、签名与指令 data 一律使用 base58。
package replay

import (
	"fmt"
	"os"

	"dex-parser-sol/internal/cache"
	"dex-parser-sol/internal/logic/core"
	"dex-parser-sol/internal/types"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

type Account struct {
	Pubkey   types.Pubkey `yaml:"pubkey"`
	Signer   bool         `yaml:"signer,omitempty"`
	Writable bool         `yaml:"writable,omitempty"`
}

type Instruction struct {
	ProgramIDIndex uint32   `yaml:"program_id_index"`
	Accounts       []uint32 `yaml:"accounts,flow"`
	Data           string   `yaml:"data"`
	StackHeight    uint32   `yaml:"stack_height,omitempty"`
}

type InnerGroup struct {
	Index        uint32        `yaml:"index"`
	Instructions []Instruction `yaml:"instructions"`
}

type TokenBalance struct {
	AccountIndex uint32 `yaml:"account_index"`
	Mint         string `yaml:"mint"`
	Owner        string `yaml:"owner,omitempty"`
	ProgramID    string `yaml:"program_id,omitempty"`
	Amount       uint64 `yaml:"amount"`
	Decimals     uint8  `yaml:"decimals"`
}

// Transaction 回放文件中的一笔交易
type Transaction struct {
	Slot              uint64         `yaml:"slot"`
	BlockTime         int64          `yaml:"block_time,omitempty"`
	TxIndex           uint32         `yaml:"tx_index"`
	Signature         string         `yaml:"signature"`
	AccountKeys       []Account      `yaml:"account_keys"`
	LoadedWritable    []types.Pubkey `yaml:"loaded_writable,omitempty"`
	LoadedReadonly    []types.Pubkey `yaml:"loaded_readonly,omitempty"`
	Instructions      []Instruction  `yaml:"instructions"`
	InnerGroups       []InnerGroup   `yaml:"inner_groups,omitempty"`
	PreBalances       []uint64       `yaml:"pre_balances,flow,omitempty"`
	PostBalances      []uint64       `yaml:"post_balances,flow,omitempty"`
	PreTokenBalances  []TokenBalance `yaml:"pre_token_balances,omitempty"`
	PostTokenBalances []TokenBalance `yaml:"post_token_balances,omitempty"`
	Logs              []string       `yaml:"logs,omitempty"`
	Failed            bool           `yaml:"failed,omitempty"`
}

// Pool 预置到 PoolCache 的池子元数据
type Pool struct {
	Pool          types.Pubkey `yaml:"pool"`
	BaseMint      types.Pubkey `yaml:"base_mint"`
	QuoteMint     types.Pubkey `yaml:"quote_mint"`
	LpMint        types.Pubkey `yaml:"lp_mint,omitempty"`
	BaseVault     types.Pubkey `yaml:"base_vault,omitempty"`
	QuoteVault    types.Pubkey `yaml:"quote_vault,omitempty"`
	BaseDecimals  uint8        `yaml:"base_decimals"`
	QuoteDecimals uint8        `yaml:"quote_decimals"`
	Dex           int          `yaml:"dex"`
}

// File 回放文件
type File struct {
	Pools        []Pool        `yaml:"pools,omitempty"`
	Transactions []Transaction `yaml:"transactions"`
}

// Load 读取并解析回放文件
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func Decode(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode replay file: %w", err)
	}
	return &f, nil
}

func Encode(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// PoolInfos 转换为缓存条目
func (f *File) PoolInfos() []cache.PoolInfo {
	out := make([]cache.PoolInfo, len(f.Pools))
	for i, p := range f.Pools {
		out[i] = cache.PoolInfo{
			Pool:          p.Pool,
			BaseMint:      p.BaseMint,
			QuoteMint:     p.QuoteMint,
			LpMint:        p.LpMint,
			BaseVault:     p.BaseVault,
			QuoteVault:    p.QuoteVault,
			BaseDecimals:  p.BaseDecimals,
			QuoteDecimals: p.QuoteDecimals,
			Dex:           p.Dex,
		}
	}
	return out
}

// RawTransactions 转换全部交易，第 i 笔出错时返回带序号的错误
func (f *File) RawTransactions() ([]*core.RawTransaction, error) {
	out := make([]*core.RawTransaction, 0, len(f.Transactions))
	for i := range f.Transactions {
		raw, err := f.Transactions[i].ToRaw()
		if err != nil {
			return nil, fmt.Errorf("transaction #%d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func decodeData(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base58.Decode(s)
}

// ToRaw 转换为解析输入
func (t *Transaction) ToRaw() (*core.RawTransaction, error) {
	sig, err := base58.Decode(t.Signature)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	raw := &core.RawTransaction{
		Slot:           t.Slot,
		BlockTime:      t.BlockTime,
		TxIndex:        t.TxIndex,
		Signature:      sig,
		AccountKeys:    make([]core.RawAccount, len(t.AccountKeys)),
		LoadedWritable: t.LoadedWritable,
		LoadedReadonly: t.LoadedReadonly,
		Instructions:   make([]core.RawInstruction, len(t.Instructions)),
		PreBalances:    t.PreBalances,
		PostBalances:   t.PostBalances,
		LogMessages:    t.Logs,
		Failed:         t.Failed,
	}
	for i, a := range t.AccountKeys {
		raw.AccountKeys[i] = core.RawAccount{Pubkey: a.Pubkey, Signer: a.Signer, Writable: a.Writable}
	}
	for i, ix := range t.Instructions {
		data, err := decodeData(ix.Data)
		if err != nil {
			return nil, fmt.Errorf("decode instruction %d data: %w", i, err)
		}
		raw.Instructions[i] = core.RawInstruction{ProgramIDIndex: ix.ProgramIDIndex, Accounts: ix.Accounts, Data: data}
	}
	for _, g := range t.InnerGroups {
		group := core.RawInnerGroup{Index: g.Index, Instructions: make([]core.RawInnerInstruction, len(g.Instructions))}
		for j, ix := range g.Instructions {
			data, err := decodeData(ix.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inner instruction %d.%d data: %w", g.Index, j, err)
			}
			group.Instructions[j] = core.RawInnerInstruction{
				ProgramIDIndex: ix.ProgramIDIndex,
				Accounts:       ix.Accounts,
				Data:           data,
				StackHeight:    ix.StackHeight,
			}
		}
		raw.InnerGroups = append(raw.InnerGroups, group)
	}
	raw.PreTokenBalances = toRawBalances(t.PreTokenBalances)
	raw.PostTokenBalances = toRawBalances(t.PostTokenBalances)
	return raw, nil
}

func toRawBalances(list []TokenBalance) []core.RawTokenBalance {
	if len(list) == 0 {
		return nil
	}
	out := make([]core.RawTokenBalance, len(list))
	for i, b := range list {
		out[i] = core.RawTokenBalance(b)
	}
	return out
}

func fromRawBalances(list []core.RawTokenBalance) []TokenBalance {
	if len(list) == 0 {
		return nil
	}
	out := make([]TokenBalance, len(list))
	for i, b := range list {
		out[i] = TokenBalance(b)
	}
	return out
}

// FromRaw 把解析输入转换为回放格式，用于从线上数据录制回放文件
func FromRaw(raw *core.RawTransaction) Transaction {
	t := Transaction{
		Slot:              raw.Slot,
		BlockTime:         raw.BlockTime,
		TxIndex:           raw.TxIndex,
		Signature:         base58.Encode(raw.Signature),
		AccountKeys:       make([]Account, len(raw.AccountKeys)),
		LoadedWritable:    raw.LoadedWritable,
		LoadedReadonly:    raw.LoadedReadonly,
		Instructions:      make([]Instruction, len(raw.Instructions)),
		PreBalances:       raw.PreBalances,
		PostBalances:      raw.PostBalances,
		PreTokenBalances:  fromRawBalances(raw.PreTokenBalances),
		PostTokenBalances: fromRawBalances(raw.PostTokenBalances),
		Logs:              raw.LogMessages,
		Failed:            raw.Failed,
	}
	for i, a := range raw.AccountKeys {
		t.AccountKeys[i] = Account{Pubkey: a.Pubkey, Signer: a.Signer, Writable: a.Writable}
	}
	for i, ix := range raw.Instructions {
		t.Instructions[i] = Instruction{ProgramIDIndex: ix.ProgramIDIndex, Accounts: ix.Accounts, Data: base58.Encode(ix.Data)}
	}
	for _, g := range raw.InnerGroups {
		group := InnerGroup{Index: g.Index, Instructions: make([]Instruction, len(g.Instructions))}
		for j, ix := range g.Instructions {
			group.Instructions[j] = Instruction{
				ProgramIDIndex: ix.ProgramIDIndex,
				Accounts:       ix.Accounts,
				Data:           base58.Encode(ix.Data),
				StackHeight:    ix.StackHeight,
			}
		}
		t.InnerGroups = append(t.InnerGroups, group)
	}
	return t
}
