package buffer

import (
	"sync"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// ClockReplacer implements second-chance replacement. Evictable frames form
// a circular list kept in prev/next arrays indexed by frame id, each entry
// carrying a reference bit; a clock hand walks the ring looking for an
// entry whose bit is clear. New entries join at the tail (just before the
// head) with their bit set, so a freshly unpinned frame always survives the
// hand's first visit.
type ClockReplacer struct {
	mu     sync.Mutex
	next   []FrameID
	prev   []FrameID
	ref    []bool
	inList []bool
	head   FrameID // oldest entry, -1 when empty
	hand   FrameID // -1 when empty
	size   int
}

func NewClockReplacer(numFrames int) *ClockReplacer {
	if numFrames <= 0 {
		panic(util.ErrInvalidPoolSize)
	}
	cr := &ClockReplacer{
		next:   make([]FrameID, numFrames),
		prev:   make([]FrameID, numFrames),
		ref:    make([]bool, numFrames),
		inList: make([]bool, numFrames),
		head:   -1,
		hand:   -1,
	}
	for i := range cr.next {
		cr.next[i] = -1
		cr.prev[i] = -1
	}
	return cr
}

// Victim sweeps the ring from the hand: a set reference bit buys the entry
// one more pass and is cleared; the first clear bit names the victim. Each
// full sweep clears at least one bit, so at most two passes are made.
func (cr *ClockReplacer) Victim() (FrameID, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.size == 0 {
		return -1, false
	}
	for {
		f := cr.hand
		if !cr.ref[f] {
			cr.remove(f)
			return f, true
		}
		cr.ref[f] = false
		cr.hand = cr.next[f]
	}
}

// Pin removes frameID from the ring. No-op if absent. If the hand pointed
// at the removed entry it advances to the next one.
func (cr *ClockReplacer) Pin(frameID FrameID) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if !cr.contains(frameID) {
		return
	}
	cr.remove(frameID)
}

// Unpin appends frameID at the tail of the ring with its reference bit set.
// If the frame is already present only the bit is set: the second chance.
// The hand does not move.
func (cr *ClockReplacer) Unpin(frameID FrameID) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if frameID < 0 || int(frameID) >= len(cr.inList) {
		return
	}
	if cr.inList[frameID] {
		cr.ref[frameID] = true
		return
	}

	if cr.head == -1 {
		cr.next[frameID] = frameID
		cr.prev[frameID] = frameID
		cr.head = frameID
		cr.hand = frameID
	} else {
		tail := cr.prev[cr.head]
		cr.next[tail] = frameID
		cr.prev[frameID] = tail
		cr.next[frameID] = cr.head
		cr.prev[cr.head] = frameID
	}
	cr.ref[frameID] = true
	cr.inList[frameID] = true
	cr.size++
}

func (cr *ClockReplacer) Size() int {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.size
}

func (cr *ClockReplacer) contains(frameID FrameID) bool {
	return frameID >= 0 && int(frameID) < len(cr.inList) && cr.inList[frameID]
}

// remove unlinks a frame known to be in the ring, advancing the hand off
// the removed entry.
func (cr *ClockReplacer) remove(frameID FrameID) {
	if cr.size == 1 {
		cr.head = -1
		cr.hand = -1
	} else {
		prev := cr.prev[frameID]
		next := cr.next[frameID]
		cr.next[prev] = next
		cr.prev[next] = prev
		if cr.head == frameID {
			cr.head = next
		}
		if cr.hand == frameID {
			cr.hand = next
		}
	}

	cr.next[frameID] = -1
	cr.prev[frameID] = -1
	cr.ref[frameID] = false
	cr.inList[frameID] = false
	cr.size--
}
