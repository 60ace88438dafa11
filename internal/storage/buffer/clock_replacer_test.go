package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockSecondChance(t *testing.T) {
	// Pool of 3, reference bits all set, one refreshed: the first sweep
	// clears every bit and wraps back to the oldest entry.
	cr := NewClockReplacer(3)
	cr.Unpin(0)
	cr.Unpin(1)
	cr.Unpin(2)
	cr.Unpin(1) // already present: bit stays set, hand does not move
	assert.Equal(t, 3, cr.Size())

	got, ok := cr.Victim()
	assert.True(t, ok)
	assert.Equal(t, FrameID(0), got, "hand sweeps 0,1,2 clearing bits, wraps to 0")

	got, ok = cr.Victim()
	assert.True(t, ok)
	assert.Equal(t, FrameID(1), got)

	got, ok = cr.Victim()
	assert.True(t, ok)
	assert.Equal(t, FrameID(2), got)

	_, ok = cr.Victim()
	assert.False(t, ok)
	assert.Equal(t, 0, cr.Size())
}

func TestClockUnpinRefreshesBit(t *testing.T) {
	cr := NewClockReplacer(3)
	cr.Unpin(0)
	cr.Unpin(1)

	// First victim clears both bits and takes 0; 1's bit is now clear.
	got, ok := cr.Victim()
	assert.True(t, ok)
	assert.Equal(t, FrameID(0), got)

	// Unpinning 1 again sets its bit; as the only entry left it is still
	// the victim once the sweep has cleared that bit.
	cr.Unpin(1)
	got, ok = cr.Victim()
	assert.True(t, ok)
	assert.Equal(t, FrameID(1), got, "single entry: bit cleared on first pass, taken on second")
}

func TestClockPin(t *testing.T) {
	t.Run("RemovesEntry", func(t *testing.T) {
		cr := NewClockReplacer(4)
		cr.Unpin(0)
		cr.Unpin(1)
		cr.Unpin(2)

		cr.Pin(1)
		assert.Equal(t, 2, cr.Size())

		// 1 can no longer be the victim.
		victims := map[FrameID]bool{}
		for {
			f, ok := cr.Victim()
			if !ok {
				break
			}
			victims[f] = true
		}
		assert.Equal(t, map[FrameID]bool{0: true, 2: true}, victims)
	})

	t.Run("HandAdvancesOffRemovedEntry", func(t *testing.T) {
		cr := NewClockReplacer(4)
		cr.Unpin(0)
		cr.Unpin(1)
		cr.Unpin(2)

		// Hand sits on 0. Removing 0 moves the hand to 1; the sweep then
		// starts there.
		cr.Pin(0)
		got, ok := cr.Victim()
		assert.True(t, ok)
		assert.Equal(t, FrameID(1), got, "bits cleared from 1; wrap finds 1 first")
	})

	t.Run("AbsentIsNoop", func(t *testing.T) {
		cr := NewClockReplacer(4)
		cr.Pin(2)
		cr.Pin(-1)
		cr.Pin(9)
		assert.Equal(t, 0, cr.Size())
	})

	t.Run("RemoveLastEntryEmptiesRing", func(t *testing.T) {
		cr := NewClockReplacer(2)
		cr.Unpin(1)
		cr.Pin(1)
		assert.Equal(t, 0, cr.Size())
		_, ok := cr.Victim()
		assert.False(t, ok)

		// The ring works again after being emptied.
		cr.Unpin(0)
		got, ok := cr.Victim()
		assert.True(t, ok)
		assert.Equal(t, FrameID(0), got)
	})
}

func TestClockUnpinsThenVictimsDrain(t *testing.T) {
	// k unpins followed by k victims empties the replacer.
	const k = 5
	cr := NewClockReplacer(k)
	for f := FrameID(0); f < k; f++ {
		cr.Unpin(f)
	}
	for i := 0; i < k; i++ {
		_, ok := cr.Victim()
		assert.True(t, ok, "victim %d", i)
	}
	assert.Equal(t, 0, cr.Size())
}
