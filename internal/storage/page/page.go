package page

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

const (
	// HeaderSize is the size of the serialized PageHeader:
	// PageID(8) + Checksum(4) + Flags(2) + padding(2).
	HeaderSize = 16

	// DataSize is the payload capacity of one page.
	DataSize = util.PageSize - HeaderSize
)

// Flag bits kept in PageHeader.Flags. Dirty and pinned mirror buffer-pool
// state for diagnostics and are masked out of the on-disk copy.
const (
	FlagDirty uint16 = 1 << iota
	FlagPinned

	runtimeFlags = FlagDirty | FlagPinned
)

// Page is the block that is read from and written to disk.
type Page struct {
	Header PageHeader
	Data   [DataSize]byte
}

type PageHeader struct {
	PageID   util.PageID // 8 bytes
	Checksum uint32      // 4 bytes
	Flags    uint16      // 2 bytes
	_        uint16      // 2 bytes (padding)
}

func (h *PageHeader) IsDirty() bool  { return h.Flags&FlagDirty != 0 }
func (h *PageHeader) IsPinned() bool { return h.Flags&FlagPinned != 0 }

func (h *PageHeader) SetDirtyFlag()    { h.Flags |= FlagDirty }
func (h *PageHeader) ClearDirtyFlag()  { h.Flags &^= FlagDirty }
func (h *PageHeader) SetPinnedFlag()   { h.Flags |= FlagPinned }
func (h *PageHeader) ClearPinnedFlag() { h.Flags &^= FlagPinned }

// Serialize packs the page into a byte slice for writing. The checksum is
// computed here over the payload; runtime flags do not reach disk.
func (p *Page) Serialize() []byte {
	p.Header.Checksum = Checksum(p.Data[:])

	buf := make([]byte, util.PageSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	binary.LittleEndian.PutUint32(buf[8:12], p.Header.Checksum)
	binary.LittleEndian.PutUint16(buf[12:14], p.Header.Flags&^runtimeFlags)
	copy(buf[HeaderSize:], p.Data[:])

	return buf
}

// DeserializeInto unpacks a raw page-size buffer into p and validates the
// checksum. A stored checksum of zero means the page was never written and
// is not verified.
func DeserializeInto(buf []byte, p *Page) error {
	if len(buf) != util.PageSize {
		return util.ErrInvalidPageSize
	}

	p.Header.PageID = util.PageID(binary.LittleEndian.Uint64(buf[0:8]))
	p.Header.Checksum = binary.LittleEndian.Uint32(buf[8:12])
	p.Header.Flags = binary.LittleEndian.Uint16(buf[12:14])
	copy(p.Data[:], buf[HeaderSize:])

	if p.Header.Checksum != 0 && p.Header.Checksum != Checksum(p.Data[:]) {
		return util.ErrChecksumMismatch
	}
	return nil
}

// Checksum returns the page checksum of a payload: the low 32 bits of its
// xxhash64 digest.
func Checksum(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}

// Reset clears the page back to the free state.
func (p *Page) Reset() {
	p.Header = PageHeader{PageID: util.InvalidPageID}
	p.Data = [DataSize]byte{}
}
