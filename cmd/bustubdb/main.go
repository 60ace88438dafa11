package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/xixiaodanpaul/bustub-database/internal/config"
	"github.com/xixiaodanpaul/bustub-database/internal/logger"
	"github.com/xixiaodanpaul/bustub-database/internal/storage/buffer"
	"github.com/xixiaodanpaul/bustub-database/internal/storage/disk"
	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to engine ini file")
	flag.Parse()

	opts, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(opts.LogLevel)

	dm, err := disk.NewManager(opts.Path, opts.SyncWrites)
	if err != nil {
		logger.Errorf("open disk manager: %v", err)
		os.Exit(1)
	}
	defer dm.Close()

	replacer, err := buffer.NewReplacer(opts.Policy, opts.PoolSize)
	if err != nil {
		logger.Errorf("build replacer: %v", err)
		os.Exit(1)
	}
	pool := buffer.NewBufferPool(opts.PoolSize, dm, nil, replacer)
	defer pool.Close()

	logger.Infof("bustubdb: pool_size=%d policy=%s path=%s", opts.PoolSize, opts.Policy, opts.Path)

	// Small smoke workload: create pages, dirty them, churn the pool, read
	// them back through the cache.
	const pages = 8
	pids := make([]util.PageID, 0, pages)
	for i := 0; i < pages; i++ {
		fr, pid := pool.NewPage()
		if fr == nil {
			logger.Errorf("pool full after %d pages", i)
			os.Exit(1)
		}
		copy(fr.Data(), fmt.Sprintf("page %d payload", pid))
		pool.UnpinPage(pid, true)
		pids = append(pids, pid)
	}

	for _, pid := range pids {
		fr := pool.FetchPage(pid)
		if fr == nil {
			logger.Errorf("fetch of page %d failed", pid)
			os.Exit(1)
		}
		want := []byte(fmt.Sprintf("page %d payload", pid))
		if !bytes.Equal(fr.Data()[:len(want)], want) {
			logger.Errorf("page %d payload mismatch", pid)
			os.Exit(1)
		}
		pool.UnpinPage(pid, false)
	}
	pool.FlushAllPages()

	st := pool.Stats()
	logger.Infof("workload done: hits=%d misses=%d evictions=%d flushes=%d",
		st.Hits, st.Misses, st.Evictions, st.Flushes)
}
