package cache

import "sync"

const ultraHotCapacity = 20

// ultraHotSlot is a single slab slot: a prefix and the full completion
// list cached for it, not just the top result, so a hit can satisfy a
// GetCompletions call for any limit up to len(completions).
type ultraHotSlot struct {
	prefix      string
	completions []ScoredCompletion
}

// ultraHotSlab is the smallest, fastest cache tier: a fixed-size slice
// scanned linearly rather than hashed, since at 20 entries a linear scan
// beats map overhead (grounded on the dense fixed-array rationale used
// for the primary trie's child table). A hit shifts its entry to the
// front, giving cheap most-recently-used ordering without a separate
// access-time field.
type ultraHotSlab struct {
	mu    sync.RWMutex
	slots []ultraHotSlot
}

func newUltraHotSlab() *ultraHotSlab {
	return &ultraHotSlab{slots: make([]ultraHotSlot, 0, ultraHotCapacity)}
}

// lookup returns the cached completions for prefix and whether it was
// found. On a hit, the slot is promoted to the front of the slab.
func (u *ultraHotSlab) lookup(prefix string) ([]ScoredCompletion, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i, s := range u.slots {
		if s.prefix == prefix {
			if i != 0 {
				copy(u.slots[1:i+1], u.slots[0:i])
				u.slots[0] = s
			}
			return s.completions, true
		}
	}
	return nil, false
}

// put inserts or promotes prefix→completions at the front of the slab,
// evicting the least-recently-promoted entry (the tail) when full. This
// is also the mechanism spec.md §4.2 calls "promotion into ultra-hot":
// every hot-map hit shifts the matched entry into slot 0.
func (u *ultraHotSlab) put(prefix string, completions []ScoredCompletion) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i, s := range u.slots {
		if s.prefix == prefix {
			u.slots = append(u.slots[:i], u.slots[i+1:]...)
			break
		}
	}

	slot := ultraHotSlot{prefix: prefix, completions: completions}
	u.slots = append([]ultraHotSlot{slot}, u.slots...)
	if len(u.slots) > ultraHotCapacity {
		u.slots = u.slots[:ultraHotCapacity]
	}
}

// invalidate drops prefix from the slab, if present, mirroring
// hotMap.invalidate so a stale promoted entry can't shadow a fresher
// trie write at the same prefix.
func (u *ultraHotSlab) invalidate(prefix string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, s := range u.slots {
		if s.prefix == prefix {
			u.slots = append(u.slots[:i], u.slots[i+1:]...)
			return
		}
	}
}

func (u *ultraHotSlab) len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.slots)
}

func (u *ultraHotSlab) snapshot() []ultraHotSlot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]ultraHotSlot, len(u.slots))
	copy(out, u.slots)
	return out
}

func (u *ultraHotSlab) restore(slots []ultraHotSlot) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(slots) > ultraHotCapacity {
		slots = slots[:ultraHotCapacity]
	}
	u.slots = append(u.slots[:0], slots...)
}
