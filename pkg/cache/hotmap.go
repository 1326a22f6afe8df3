package cache

import (
	"strings"
	"sync"
)

const (
	hotMapCapacity    = 100
	promotionInterval = 10
)

// hotMapEntry is one promoted prefix→completions pair.
type hotMapEntry struct {
	prefix      string
	completions []ScoredCompletion
}

// hotMap is the mid tier described by spec.md §4.2: a case-insensitive
// dictionary of up to hotMapCapacity most-recently-promoted
// prefix→[completions] pairs. Entries arrive via observe, which promotes
// on every promotionInterval-th trie access with the most recently hit
// prefix, and otherwise only through seedEntry and restore at
// construction and snapshot load.
type hotMap struct {
	mu      sync.RWMutex
	entries map[string]hotMapEntry
	order   []string // insertion order, for FIFO eviction
	access  int64
}

func newHotMap() *hotMap {
	return &hotMap{entries: make(map[string]hotMapEntry, hotMapCapacity)}
}

// lookup returns the completions promoted for prefix, if any.
func (h *hotMap) lookup(prefix string) ([]ScoredCompletion, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.entries[prefix]
	if !ok {
		return nil, false
	}
	return e.completions, true
}

// observe records one trie access for prefix with its completions,
// promoting prefix into the hot map on every promotionInterval-th call.
// Reports whether this access caused a promotion and, if so, the
// completions promoted, so the caller can chain the ultra-hot promotion.
func (h *hotMap) observe(prefix string, completions []ScoredCompletion) (promoted bool, out []ScoredCompletion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.access++
	if h.access%promotionInterval != 0 {
		return false, nil
	}

	if _, exists := h.entries[prefix]; !exists {
		if len(h.entries) >= hotMapCapacity {
			h.evictOldestLocked()
		}
		h.order = append(h.order, prefix)
	}
	h.entries[prefix] = hotMapEntry{prefix: prefix, completions: completions}
	return true, completions
}

// seedEntry inserts prefix→completions directly, bypassing the access
// counter, for use only at construction time (spec.md §4.2
// "Initialization") and at snapshot restore.
func (h *hotMap) seedEntry(prefix string, completions []ScoredCompletion) {
	h.mu.Lock()
	defer h.mu.Unlock()

	lower := strings.ToLower(prefix)
	if _, exists := h.entries[lower]; !exists {
		if len(h.entries) >= hotMapCapacity {
			h.evictOldestLocked()
		}
		h.order = append(h.order, lower)
	}
	h.entries[lower] = hotMapEntry{prefix: lower, completions: completions}
}

// evictOldestLocked drops the first-promoted entry still on record.
// Caller must hold h.mu.
func (h *hotMap) evictOldestLocked() {
	for len(h.order) > 0 {
		victim := h.order[0]
		h.order = h.order[1:]
		if _, ok := h.entries[victim]; ok {
			delete(h.entries, victim)
			return
		}
	}
}

// invalidate drops prefix from the hot map, if present, so a subsequent
// lookup falls through to the trie and re-derives (and re-promotes)
// fresh scores. Used when a trie write under prefix could make a
// previously cached/seeded hot-map entry stale.
func (h *hotMap) invalidate(prefix string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entries, prefix)
}

func (h *hotMap) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// snapshot returns a copy of the hot map as prefix→completion-text
// lists, the shape spec.md §6 mandates for hotcache.json.
func (h *hotMap) snapshot() map[string][]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string][]string, len(h.entries))
	for prefix, e := range h.entries {
		texts := make([]string, len(e.completions))
		for i, c := range e.completions {
			texts[i] = c.Text
		}
		out[prefix] = texts
	}
	return out
}

// restore repopulates the hot map from a previously persisted snapshot,
// scoring each completion by its position (earlier = higher), used at
// startup load per spec.md §4.5.
func (h *hotMap) restore(snap map[string][]string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for prefix, texts := range snap {
		if len(h.entries) >= hotMapCapacity {
			h.evictOldestLocked()
		}
		completions := make([]ScoredCompletion, len(texts))
		for i, text := range texts {
			completions[i] = ScoredCompletion{Text: text, Score: float64(len(texts) - i)}
		}
		h.entries[strings.ToLower(prefix)] = hotMapEntry{prefix: strings.ToLower(prefix), completions: completions}
		h.order = append(h.order, strings.ToLower(prefix))
	}
}
