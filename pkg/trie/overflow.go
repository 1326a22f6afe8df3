package trie

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tchap/go-patricia/v2/patricia"
)

// overflowIndex is the fallback completion store for prefixes containing
// runes outside the dense ASCII child table's range. It trades the
// per-node lock granularity of the primary Trie for a single coarse
// mutex guarding a patricia.Trie keyed on the raw (lowercased) prefix,
// since non-ASCII traffic is expected to be rare relative to the ASCII
// fast path.
type overflowIndex struct {
	mu   sync.RWMutex
	tree *patricia.Trie

	keyCount   int64
	entryCount int64
}

func newOverflowIndex() *overflowIndex {
	return &overflowIndex{tree: patricia.NewTrie()}
}

// Insert upserts text under key, same scoring/cap rules as the ASCII
// path's terminal-node upsert (no ancestor propagation: overflow keys
// are looked up only at full length).
func (o *overflowIndex) Insert(key, text string, score float64, ticks int64) {
	if key == "" {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	prefix := patricia.Prefix(key)
	var entries []CompletionEntry
	item := o.tree.Get(prefix)
	newKey := item == nil
	if !newKey {
		entries = item.([]CompletionEntry)
	}

	found := false
	for i := range entries {
		if entries[i].Text == text {
			if score > entries[i].Score {
				entries[i].Score = score
			}
			entries[i].LastUsedTicks = ticks
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, NewEntry(text, score, ticks))
		atomic.AddInt64(&o.entryCount, 1)
	}

	sort.Slice(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	if len(entries) > maxEntriesPerNode {
		dropped := len(entries) - maxEntriesPerNode
		entries = entries[:maxEntriesPerNode]
		atomic.AddInt64(&o.entryCount, -int64(dropped))
	}

	o.tree.Set(prefix, entries)
	if newKey {
		atomic.AddInt64(&o.keyCount, 1)
	}
}

// Lookup returns up to k scored entries stored under the exact key.
func (o *overflowIndex) Lookup(key string, k int) []ScoredEntry {
	if key == "" {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()

	item := o.tree.Get(patricia.Prefix(key))
	if item == nil {
		return nil
	}
	entries := item.([]CompletionEntry)

	n := k
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]ScoredEntry, n)
	for i := 0; i < n; i++ {
		out[i] = ScoredEntry{Text: entries[i].Text, Score: entries[i].Score}
	}
	return out
}

// Clear drops every overflow entry.
func (o *overflowIndex) Clear() {
	o.mu.Lock()
	o.tree = patricia.NewTrie()
	o.mu.Unlock()
	atomic.StoreInt64(&o.keyCount, 0)
	atomic.StoreInt64(&o.entryCount, 0)
}

// Stats returns (distinct key count, total entry count).
func (o *overflowIndex) Stats() (keyCount, entryCount int64) {
	return atomic.LoadInt64(&o.keyCount), atomic.LoadInt64(&o.entryCount)
}
