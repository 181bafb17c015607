package utils

import (
	"sync"
	"sync/atomic"
)

// ParallelMap 使用至多 workers 个协程并发执行 fn，结果顺序与输入一致。
// 输入为空返回空切片；单元素或 workers<=1 时在当前协程内顺序执行。
func ParallelMap[T any, R any](input []T, workers int, fn func(T) R) []R {
	results := make([]R, len(input))
	if len(input) == 0 {
		return results
	}
	if workers <= 1 || len(input) == 1 {
		for i, v := range input {
			results[i] = fn(v)
		}
		return results
	}
	if workers > len(input) {
		workers = len(input)
	}

	// 工作协程通过原子游标领取下标，避免 channel 分发开销
	var cursor int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1))
				if i >= len(input) {
					return
				}
				results[i] = fn(input[i])
			}
		}()
	}
	wg.Wait()
	return results
}
