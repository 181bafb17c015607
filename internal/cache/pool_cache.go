package cache

import (
	"sync"

	"dex-parser-sol/internal/pkg/lru"
	"dex-parser-sol/internal/types"
)

const DefaultPoolCacheCapacity = 50_000

// PoolInfo 交易本身不携带、需外部查询的池子元数据（mint 与精度）
type PoolInfo struct {
	Pool          types.Pubkey `json:"pool"`
	BaseMint      types.Pubkey `json:"baseMint"`
	QuoteMint     types.Pubkey `json:"quoteMint"`
	LpMint        types.Pubkey `json:"lpMint"`
	BaseVault     types.Pubkey `json:"baseVault"`
	QuoteVault    types.Pubkey `json:"quoteVault"`
	BaseDecimals  uint8        `json:"baseDecimals"`
	QuoteDecimals uint8        `json:"quoteDecimals"`
	Dex           int          `json:"dex"`
}

// PoolCache 多个解析协程共享的池子元数据缓存。
// LRU 的 Get 会修改最近使用顺序，读写都必须持有互斥锁，不能使用 RWMutex。
type PoolCache struct {
	mu    sync.Mutex
	items *lru.Cache[types.Pubkey, PoolInfo]
}

func NewPoolCache(capacity int) *PoolCache {
	if capacity <= 0 {
		capacity = DefaultPoolCacheCapacity
	}
	return &PoolCache{items: lru.New[types.Pubkey, PoolInfo](capacity)}
}

// Get 未命中返回 false，调用方需记录缺失并交由外部拉取后 Set
func (pc *PoolCache) Get(pool types.Pubkey) (PoolInfo, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.items.Get(pool)
}

func (pc *PoolCache) Set(info PoolInfo) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.items.Set(info.Pool, info)
}

// SetBatch 一次加锁写入多条，用于元数据服务回填
func (pc *PoolCache) SetBatch(infos []PoolInfo) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	for _, info := range infos {
		pc.items.Set(info.Pool, info)
	}
}

func (pc *PoolCache) Len() int {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.items.Len()
}

func (pc *PoolCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.items.Clear()
}
