package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/xixiaodanpaul/bustub-database/internal/logger"
	"github.com/xixiaodanpaul/bustub-database/internal/storage/disk"
	"github.com/xixiaodanpaul/bustub-database/internal/storage/page"
	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// LogManager is the write-ahead log collaborator. The pool retains the
// handle for recovery integration at a higher layer and issues no calls to
// it.
type LogManager interface{}

// Frame is the resident container for one page. The payload bytes returned
// by Data belong to the caller while the frame is pinned; under its own
// mutex the pool reads them when flushing (pinned frames included) and
// rewrites them only when the frame is reassigned.
type Frame struct {
	page     page.Page
	pinCount int32
	dirty    bool
}

// PageID returns the page held by the frame, or InvalidPageID if free.
func (f *Frame) PageID() util.PageID { return f.page.Header.PageID }

// Data returns the page payload buffer.
func (f *Frame) Data() []byte { return f.page.Data[:] }

func (f *Frame) PinCount() int32 { return atomic.LoadInt32(&f.pinCount) }
func (f *Frame) IsDirty() bool   { return f.dirty }

// reset clears the frame back to the free state.
func (f *Frame) reset() {
	f.page.Reset()
	atomic.StoreInt32(&f.pinCount, 0)
	f.dirty = false
}

// Stats are cumulative buffer pool counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Flushes   uint64
}

// BufferPool keeps a bounded set of pages resident, mediating every read
// and write between access methods and the disk manager. One mutex guards
// the frame metadata, page table, free list and replacer calls for the full
// duration of each operation, disk I/O included.
type BufferPool struct {
	mu        sync.Mutex
	frames    []Frame
	pageTable map[util.PageID]FrameID
	nextFree  []FrameID // free list threaded through an array, -1 terminated
	freeHead  FrameID
	replacer  Replacer
	dm        *disk.Manager
	logMgr    LogManager
	closed    bool
	stats     Stats
}

// NewBufferPool builds a pool of poolSize frames over the disk manager.
// logMgr may be nil. Panics if poolSize is not positive.
func NewBufferPool(poolSize int, dm *disk.Manager, logMgr LogManager, replacer Replacer) *BufferPool {
	if poolSize <= 0 {
		panic(util.ErrInvalidPoolSize)
	}

	bp := &BufferPool{
		frames:    make([]Frame, poolSize),
		pageTable: make(map[util.PageID]FrameID, poolSize),
		nextFree:  make([]FrameID, poolSize),
		freeHead:  0,
		replacer:  replacer,
		dm:        dm,
		logMgr:    logMgr,
	}
	for i := range bp.frames {
		bp.frames[i].page.Header.PageID = util.InvalidPageID
		bp.nextFree[i] = FrameID(i + 1)
	}
	bp.nextFree[poolSize-1] = -1
	return bp
}

// FetchPage returns the frame holding pageID, reading it from disk on a
// miss. The frame comes back pinned; every successful fetch must be paired
// with an UnpinPage. Returns nil when every frame is pinned.
func (bp *BufferPool) FetchPage(pageID util.PageID) *Frame {
	if pageID < 0 {
		return nil
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return nil
	}

	if frameID, ok := bp.pageTable[pageID]; ok {
		fr := &bp.frames[frameID]
		atomic.AddInt32(&fr.pinCount, 1)
		fr.page.Header.SetPinnedFlag()
		bp.replacer.Pin(frameID)
		bp.stats.Hits++
		return fr
	}
	bp.stats.Misses++

	frameID, ok := bp.pickVictim()
	if !ok {
		return nil
	}
	fr := &bp.frames[frameID]
	fr.reset()
	if err := bp.dm.ReadPage(pageID, &fr.page); err != nil {
		logger.Errorf("buffer: read of page %d failed: %v", pageID, err)
		fr.reset()
		bp.pushFree(frameID)
		return nil
	}

	bp.pageTable[pageID] = frameID
	atomic.StoreInt32(&fr.pinCount, 1)
	fr.dirty = false
	fr.page.Header.SetPinnedFlag()
	return fr
}

// UnpinPage drops one hold on pageID, handing the frame to the replacer
// when the count reaches zero. The dirty flag ORs into the frame's dirty
// bit. Unpinning a page that is not in the pool, or whose pin count is
// already zero, returns false and changes nothing (the count clamps at
// zero rather than asserting).
func (bp *BufferPool) UnpinPage(pageID util.PageID, dirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return false
	}
	fr := &bp.frames[frameID]
	if atomic.LoadInt32(&fr.pinCount) <= 0 {
		return false
	}

	if atomic.AddInt32(&fr.pinCount, -1) == 0 {
		fr.page.Header.ClearPinnedFlag()
		bp.replacer.Unpin(frameID)
	}
	if dirty {
		fr.dirty = true
		fr.page.Header.SetDirtyFlag()
	}
	return true
}

// FlushPage writes pageID's payload to disk and clears its dirty bit. Pin
// count and evictability do not change. Returns false if the page is not
// resident or the write fails.
func (bp *BufferPool) FlushPage(pageID util.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return false
	}
	return bp.flushFrame(&bp.frames[frameID])
}

// NewPage allocates a fresh page on disk and pins it into a frame with a
// zeroed payload. Returns (nil, InvalidPageID) when every frame is pinned.
func (bp *BufferPool) NewPage() (*Frame, util.PageID) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		return nil, util.InvalidPageID
	}

	if bp.freeHead == -1 && bp.allFramesPinned() {
		return nil, util.InvalidPageID
	}
	frameID, ok := bp.pickVictim()
	if !ok {
		return nil, util.InvalidPageID
	}

	pageID := bp.dm.AllocatePage()
	fr := &bp.frames[frameID]
	fr.reset()
	bp.pageTable[pageID] = frameID
	fr.page.Header.PageID = pageID
	atomic.StoreInt32(&fr.pinCount, 1)
	fr.page.Header.SetPinnedFlag()
	return fr, pageID
}

// DeletePage drops pageID from the pool and deallocates it on disk.
// Returns true if the page was deleted or was not resident to begin with,
// false if it is pinned.
func (bp *BufferPool) DeletePage(pageID util.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return true
	}
	fr := &bp.frames[frameID]
	if atomic.LoadInt32(&fr.pinCount) > 0 {
		return false
	}

	bp.replacer.Pin(frameID)
	delete(bp.pageTable, pageID)
	fr.reset()
	bp.pushFree(frameID)
	bp.dm.DeallocatePage(pageID)
	return true
}

// FlushAllPages writes every resident page to disk, pinned ones included,
// and clears their dirty bits.
func (bp *BufferPool) FlushAllPages() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for _, frameID := range bp.pageTable {
		bp.flushFrame(&bp.frames[frameID])
	}
}

// Close flushes all resident pages and syncs the disk manager; afterwards
// FetchPage and NewPage fail. UnpinPage, FlushPage, DeletePage and
// FlushAllPages do not check the closed state. Close does not close the
// disk manager, which the caller owns.
func (bp *BufferPool) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	for _, frameID := range bp.pageTable {
		bp.flushFrame(&bp.frames[frameID])
	}
	bp.closed = true
	return bp.dm.Sync()
}

// Stats returns a snapshot of the pool counters.
func (bp *BufferPool) Stats() Stats {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.stats
}

// Size returns the pool capacity in frames.
func (bp *BufferPool) Size() int { return len(bp.frames) }

// flushFrame writes one frame out and clears its dirty bit. Caller holds
// the pool mutex.
func (bp *BufferPool) flushFrame(fr *Frame) bool {
	if err := bp.dm.WritePage(&fr.page); err != nil {
		logger.Errorf("buffer: flush of page %d failed: %v", fr.page.Header.PageID, err)
		return false
	}
	fr.dirty = false
	fr.page.Header.ClearDirtyFlag()
	bp.stats.Flushes++
	return true
}

// pickVictim obtains a reusable frame: free list first, then a replacer
// victim, whose old page is written back if dirty and unmapped. Caller
// holds the pool mutex.
func (bp *BufferPool) pickVictim() (FrameID, bool) {
	if bp.freeHead != -1 {
		frameID := bp.freeHead
		bp.freeHead = bp.nextFree[frameID]
		bp.nextFree[frameID] = -1
		return frameID, true
	}

	frameID, ok := bp.replacer.Victim()
	if !ok {
		return -1, false
	}
	fr := &bp.frames[frameID]
	oldPageID := fr.page.Header.PageID
	if fr.dirty {
		if err := bp.dm.WritePage(&fr.page); err != nil {
			// The disk manager is assumed reliable; an eviction write-back
			// that fails anyway is surfaced loudly and the payload is lost.
			logger.Errorf("buffer: write-back of evicted page %d failed: %v", oldPageID, err)
		}
		fr.dirty = false
	}
	delete(bp.pageTable, oldPageID)
	bp.stats.Evictions++
	logger.Debugf("buffer: evicted page %d from frame %d", oldPageID, frameID)
	return frameID, true
}

// pushFree returns a frame to the free list. Caller holds the pool mutex.
func (bp *BufferPool) pushFree(frameID FrameID) {
	bp.nextFree[frameID] = bp.freeHead
	bp.freeHead = frameID
}

// allFramesPinned reports whether no frame could serve a new page. Caller
// holds the pool mutex.
func (bp *BufferPool) allFramesPinned() bool {
	for i := range bp.frames {
		if atomic.LoadInt32(&bp.frames[i].pinCount) <= 0 {
			return false
		}
	}
	return true
}
