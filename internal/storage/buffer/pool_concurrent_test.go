package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// Parallel Fetch/Unpin on a shared set of pages must neither lose pins nor
// evict a pinned page.
func TestPoolConcurrentFetchUnpin(t *testing.T) {
	t.Parallel()

	for _, policy := range []util.ReplacementPolicy{util.PolicyLRU, util.PolicyClock} {
		policy := policy
		t.Run(string(policy), func(t *testing.T) {
			t.Parallel()
			bp, _ := newTestPool(t, 10, policy)

			pids := make([]util.PageID, 5)
			for i := range pids {
				fr, pid := bp.NewPage()
				require.NotNil(t, fr)
				fr.Data()[0] = byte(i + 1)
				pids[i] = pid
				require.True(t, bp.UnpinPage(pid, true))
			}

			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(iteration int) {
					defer wg.Done()
					pid := pids[iteration%len(pids)]

					fr := bp.FetchPage(pid)
					if !assert.NotNil(t, fr, "iteration %d", iteration) {
						return
					}
					assert.Equal(t, byte(iteration%len(pids)+1), fr.Data()[0])
					assert.True(t, bp.UnpinPage(pid, false))
				}(i)
			}
			wg.Wait()

			// Every hold was returned: all five pages evictable again.
			assert.Equal(t, 5, bp.replacer.Size())
			for _, pid := range pids {
				frameID := bp.pageTable[pid]
				assert.Equal(t, int32(0), bp.frames[frameID].PinCount())
			}
		})
	}
}

// Eviction pressure from parallel NewPage callers with a smaller pool.
func TestPoolConcurrentNewPageChurn(t *testing.T) {
	t.Parallel()
	bp, _ := newTestPool(t, 4, util.PolicyLRU)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				fr, pid := bp.NewPage()
				if fr == nil {
					continue // every frame momentarily pinned
				}
				fr.Data()[0] = byte(pid % 251)
				assert.True(t, bp.UnpinPage(pid, true))
			}
		}()
	}
	wg.Wait()

	// Pool settles with nothing pinned and a full partition of frames.
	free := 0
	for idx := bp.freeHead; idx != -1; idx = bp.nextFree[idx] {
		free++
	}
	assert.Equal(t, bp.Size(), free+len(bp.pageTable))
	assert.Equal(t, len(bp.pageTable), bp.replacer.Size())
}

// Flushing while other goroutines fetch must not corrupt accounting.
func TestPoolConcurrentFetchFlush(t *testing.T) {
	t.Parallel()
	bp, _ := newTestPool(t, 10, util.PolicyLRU)

	fr, pid := bp.NewPage()
	require.NotNil(t, fr)
	require.True(t, bp.UnpinPage(pid, true))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if fr := bp.FetchPage(pid); fr != nil {
				bp.UnpinPage(pid, false)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			bp.FlushPage(pid)
		}()
	}
	wg.Wait()

	frameID := bp.pageTable[pid]
	assert.Equal(t, int32(0), bp.frames[frameID].PinCount())
	assert.Equal(t, 1, bp.replacer.Size())
}
