package buffer

import (
	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// FrameID is an index into the pool's frame array, stable for the lifetime
// of the buffer pool.
type FrameID int

// Replacer tracks the evictable frames of the buffer pool: frames that are
// resident with a pin count of zero. Membership is driven entirely by the
// pool through Pin/Unpin on pin-count transitions; the replacer never
// learns pin counts and never calls back into the pool.
//
// All methods are safe for concurrent use.
type Replacer interface {
	// Victim removes and returns one frame chosen by the policy.
	// Returns false if the evictable set is empty.
	Victim() (FrameID, bool)

	// Pin removes a frame from the evictable set. No-op if absent.
	Pin(frameID FrameID)

	// Unpin inserts a frame into the evictable set. If the frame is already
	// present the policy decides what happens: LRU leaves it in place,
	// CLOCK grants a second chance.
	Unpin(frameID FrameID)

	// Size returns the number of evictable frames.
	Size() int
}

// NewReplacer builds the replacer for a policy name.
func NewReplacer(policy util.ReplacementPolicy, numFrames int) (Replacer, error) {
	switch policy {
	case util.PolicyLRU:
		return NewLRUReplacer(numFrames), nil
	case util.PolicyClock:
		return NewClockReplacer(numFrames), nil
	default:
		return nil, util.ErrUnknownPolicy
	}
}
