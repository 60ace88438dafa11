package disk

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/xixiaodanpaul/bustub-database/internal/logger"
	"github.com/xixiaodanpaul/bustub-database/internal/storage/page"
	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// Manager reads and writes pages of the database file. A page with id n
// lives at byte offset n * PageSize. Page ids are handed out by a counter
// seeded from the file size and are never reused; deallocated ids are
// recorded for later compaction.
type Manager struct {
	file       *os.File
	nextPageID atomic.Int64
	syncWrites bool

	mu          sync.Mutex
	deallocated map[util.PageID]struct{}
	closed      bool
}

// NewManager opens (creating if needed) the database file at path.
func NewManager(path string, syncWrites bool) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, errors.Wrapf(err, "open database file %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat database file %s", path)
	}
	if info.Size()%util.PageSize != 0 {
		f.Close()
		return nil, errors.Wrapf(util.ErrInvalidPageSize,
			"file size %d not aligned to page size %d", info.Size(), util.PageSize)
	}

	dm := &Manager{
		file:        f,
		syncWrites:  syncWrites,
		deallocated: make(map[util.PageID]struct{}),
	}
	dm.nextPageID.Store(info.Size() / util.PageSize)
	return dm, nil
}

// ReadPage fills p with the on-disk payload of pageID. Reading a page that
// was allocated but never written yields a zeroed page.
func (dm *Manager) ReadPage(pageID util.PageID, p *page.Page) error {
	if pageID < 0 {
		return util.ErrInvalidPageId
	}

	buf := make([]byte, util.PageSize)
	offset := int64(pageID) * util.PageSize
	n, err := dm.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "read page %d", pageID)
	}
	if n < util.PageSize {
		// Short read past the written extent: a fresh page, buf stays zeroed.
		logger.Debugf("disk: short read of page %d (%d bytes), zero-filling", pageID, n)
	}

	if err := page.DeserializeInto(buf, p); err != nil {
		return errors.Wrapf(err, "deserialize page %d", pageID)
	}
	if p.Header.Checksum == 0 {
		// Never-written page decodes with a zero header; stamp the id the
		// caller asked for.
		p.Header.PageID = pageID
	} else if p.Header.PageID != pageID {
		return errors.Wrapf(util.ErrInvalidPageId,
			"page %d holds header id %d", pageID, p.Header.PageID)
	}
	return nil
}

// WritePage persists p at the offset of its header page id.
func (dm *Manager) WritePage(p *page.Page) error {
	pageID := p.Header.PageID
	if pageID < 0 {
		return util.ErrInvalidPageId
	}

	offset := int64(pageID) * util.PageSize
	if _, err := dm.file.WriteAt(p.Serialize(), offset); err != nil {
		return errors.Wrapf(err, "write page %d", pageID)
	}
	if dm.syncWrites {
		if err := dm.file.Sync(); err != nil {
			return errors.Wrapf(err, "sync after write of page %d", pageID)
		}
	}
	logger.Debugf("disk: wrote page %d", pageID)
	return nil
}

// AllocatePage returns a fresh, unused page id.
func (dm *Manager) AllocatePage() util.PageID {
	return util.PageID(dm.nextPageID.Add(1) - 1)
}

// DeallocatePage frees a page id. The id is only recorded; space is
// reclaimed by offline compaction.
func (dm *Manager) DeallocatePage(pageID util.PageID) {
	dm.mu.Lock()
	dm.deallocated[pageID] = struct{}{}
	dm.mu.Unlock()
	logger.Debugf("disk: deallocated page %d", pageID)
}

// DeallocatedCount reports how many pages await compaction.
func (dm *Manager) DeallocatedCount() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.deallocated)
}

// Sync flushes the file to stable storage.
func (dm *Manager) Sync() error {
	if err := dm.file.Sync(); err != nil {
		return errors.Wrap(err, "sync database file")
	}
	return nil
}

// Close syncs and closes the database file. Idempotent.
func (dm *Manager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return nil
	}
	dm.closed = true

	var err error
	if e := dm.file.Sync(); e != nil {
		err = errors.Wrap(e, "sync database file")
	}
	if e := dm.file.Close(); e != nil && err == nil {
		err = errors.Wrap(e, "close database file")
	}
	return err
}
