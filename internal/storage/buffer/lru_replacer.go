package buffer

import (
	"sync"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// LRUReplacer orders evictable frames by time of unpin. The list is kept in
// prev/next arrays indexed by frame id, so insert, remove and victim are all
// O(1) without per-node allocation. Head is the most recently unpinned
// frame, tail the least recent; the tail is the victim.
type LRUReplacer struct {
	mu     sync.Mutex
	next   []FrameID // toward the tail, -1 at the tail
	prev   []FrameID // toward the head, -1 at the head
	inList []bool
	head   FrameID // -1 when empty
	tail   FrameID
	size   int
}

func NewLRUReplacer(numFrames int) *LRUReplacer {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	lr := &LRUReplacer{
		next:   make([]FrameID, numFrames),
		prev:   make([]FrameID, numFrames),
		inList: make([]bool, numFrames),
		head:   -1,
		tail:   -1,
	}
	for i := range lr.next {
		lr.next[i] = -1
		lr.prev[i] = -1
	}
	return lr
}

// Victim evicts the least recently unpinned frame.
func (lr *LRUReplacer) Victim() (FrameID, bool) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if lr.size == 0 {
		return -1, false
	}
	victim := lr.tail
	lr.remove(victim)
	return victim, true
}

// Pin removes frameID from the evictable list. No-op if absent.
func (lr *LRUReplacer) Pin(frameID FrameID) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if !lr.contains(frameID) {
		return
	}
	lr.remove(frameID)
}

// Unpin inserts frameID at the head. A frame that is already evictable
// stays where it is: recency only changes when the pin count re-enters
// zero, and the pool calls Unpin exactly on that transition.
func (lr *LRUReplacer) Unpin(frameID FrameID) {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if frameID < 0 || int(frameID) >= len(lr.inList) || lr.inList[frameID] {
		return
	}

	lr.prev[frameID] = -1
	lr.next[frameID] = lr.head
	if lr.head != -1 {
		lr.prev[lr.head] = frameID
	}
	lr.head = frameID
	if lr.tail == -1 {
		lr.tail = frameID
	}
	lr.inList[frameID] = true
	lr.size++
}

func (lr *LRUReplacer) Size() int {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.size
}

func (lr *LRUReplacer) contains(frameID FrameID) bool {
	return frameID >= 0 && int(frameID) < len(lr.inList) && lr.inList[frameID]
}

// remove unlinks a frame known to be in the list.
func (lr *LRUReplacer) remove(frameID FrameID) {
	prev := lr.prev[frameID]
	next := lr.next[frameID]

	if prev == -1 {
		lr.head = next
	} else {
		lr.next[prev] = next
	}
	if next == -1 {
		lr.tail = prev
	} else {
		lr.prev[next] = prev
	}

	lr.next[frameID] = -1
	lr.prev[frameID] = -1
	lr.inList[frameID] = false
	lr.size--
}
