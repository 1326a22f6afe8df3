// Package cache implements the tiered lookup hierarchy sitting in front
// of pkg/trie: an ultra-hot slab, a hot map, a short-lived prediction
// cache, a static fallback pattern table, and the trie itself as the
// bottom, widest-coverage layer. TieredCache owns the Trie outright —
// every write operation that spec.md §4.2 documents as a trie insert
// happens from inside this package, not from callers reaching into the
// trie directly.
package cache

import (
	"strings"
	"time"

	"github.com/bastiangx/shellpredict/pkg/trie"
)

// Literal scores from spec.md §4.2's public surface.
const (
	predictionScore = 1.0
	acceptScore     = 2.0
	historyScore    = 0.5
)

// ScoredCompletion is a single ranked candidate flowing out of any cache
// tier, carrying the real score that tier assigned it rather than a
// placeholder.
type ScoredCompletion struct {
	Text  string
	Score float64
}

// TieredCache is the public surface combining the ultra-hot slab, the
// hot map, the prediction TTL cache, the trie, and the static fallback
// table into the single lookup path pkg/suggest drives.
type TieredCache struct {
	trie       *trie.Trie
	ultraHot   *ultraHotSlab
	hot        *hotMap
	stats      *commandStatsTable
	prediction *predictionCache
}

// New builds a TieredCache over t, pre-populating the hot map and the
// trie with the canonical seed groups and loading the highest-scored of
// them into the ultra-hot slab, per spec.md §4.2's Initialization
// paragraph.
func New(t *trie.Trie) *TieredCache {
	h := newHotMap()
	ultraSeed := seed(t, h)

	u := newUltraHotSlab()
	u.restore(ultraSeed)

	return &TieredCache{
		trie:       t,
		ultraHot:   u,
		hot:        h,
		stats:      newCommandStatsTable(),
		prediction: newPredictionCache(),
	}
}

// GetCompletions returns up to limit candidates for prefix, consulting
// the tiers in the order fixed by spec.md §4.2: ultra-hot slab, hot map
// (promoting a hit to the front of the ultra-hot slab), the trie
// (promoting the most recent hit into the hot map every 10th access),
// and finally the static fallback table.
func (c *TieredCache) GetCompletions(prefix string, limit int) []ScoredCompletion {
	lower := strings.ToLower(prefix)
	if lower == "" || limit <= 0 {
		return nil
	}

	if completions, ok := c.ultraHot.lookup(lower); ok {
		return capCompletions(completions, limit)
	}

	if completions, ok := c.hot.lookup(lower); ok {
		c.ultraHot.put(lower, completions)
		return capCompletions(completions, limit)
	}

	if scored := c.trie.LookupScored(lower, limit); len(scored) > 0 {
		completions := make([]ScoredCompletion, len(scored))
		for i, s := range scored {
			completions[i] = ScoredCompletion{Text: s.Text, Score: s.Score}
		}
		if promoted, promotedCompletions := c.hot.observe(lower, completions); promoted {
			c.ultraHot.put(lower, promotedCompletions)
		}
		return completions
	}

	return fallbackCompletions(lower, limit)
}

func capCompletions(completions []ScoredCompletion, limit int) []ScoredCompletion {
	if len(completions) > limit {
		return completions[:limit]
	}
	return completions
}

func fallbackCompletions(lowerPrefix string, limit int) []ScoredCompletion {
	texts := matchFallback(lowerPrefix, limit)
	out := make([]ScoredCompletion, len(texts))
	for i, text := range texts {
		out[i] = ScoredCompletion{Text: text, Score: 0}
	}
	return out
}

// RecordAcceptance records that command was accepted (inserted into the
// input line) without necessarily having been run yet. It inserts
// command into the trie at every prefix length of its leading token at
// acceptScore — not through the trie's usual single-prefix ancestor
// decay — so that three acceptances of a multi-word command reliably
// outrank a single-letter seed, per spec.md §8 scenario 3. Each of those
// prefixes is also invalidated in the hot map and ultra-hot slab: both
// are caches over the trie, and a seeded or previously promoted entry at
// one of these prefixes would otherwise permanently shadow the fresher
// trie write, since GetCompletions consults them before the trie. See
// DESIGN.md's "pkg/cache.RecordAcceptance" entry for the full rationale.
func (c *TieredCache) RecordAcceptance(command string, now time.Time) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return
	}
	token := leadingToken(trimmed)
	ticks := now.UnixNano()
	for i := 1; i <= len(token); i++ {
		prefix := token[:i]
		c.trie.Insert(prefix, trimmed, acceptScore, ticks)
		c.hot.invalidate(prefix)
		c.ultraHot.invalidate(prefix)
	}
	c.stats.touch(trimmed, now, func(s *CommandStats) { s.AcceptCount++ })
}

// RecordExecution increments the execute counter for command's leading
// token. Unlike RecordAcceptance it performs no trie insert: an executed
// command was already accepted (and thus already indexed) before it ran.
func (c *TieredCache) RecordExecution(command string, now time.Time) {
	c.stats.touch(command, now, func(s *CommandStats) { s.ExecuteCount++ })
}

// RecordSuggestionAcceptance increments the suggestion-accept counter,
// tracked independently of RecordAcceptance per DESIGN.md's Open
// Question decision. No trie insert.
func (c *TieredCache) RecordSuggestionAcceptance(command string, now time.Time) {
	c.stats.touch(command, now, func(s *CommandStats) { s.SuggestionAcceptCount++ })
}

// AddHistoryItem registers a line observed in shell history, inserting
// it into the trie at historyScore and refreshing its leading token's
// LastUsed without touching any of the three weighted counters.
func (c *TieredCache) AddHistoryItem(command string, now time.Time) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return
	}
	c.trie.Insert(strings.ToLower(trimmed), trimmed, historyScore, now.UnixNano())
	c.stats.touch(trimmed, now, func(*CommandStats) {})
}

// CachePrediction stores an LM-sourced prediction for predictionTTL and
// inserts it into the trie at predictionScore, so it can still surface
// via the trie after the prediction entry itself expires (spec.md §8 P4).
func (c *TieredCache) CachePrediction(p CachedPrediction) {
	c.prediction.put(p)
	c.trie.Insert(strings.ToLower(p.Input), p.Suggestion, predictionScore, p.CreatedAt.UnixNano())
}

// GetPrediction returns a still-fresh cached prediction for input, if any.
func (c *TieredCache) GetPrediction(input string, now time.Time) (CachedPrediction, bool) {
	return c.prediction.get(input, now)
}

// SweepPredictions drops expired prediction entries. No ticker in this
// module calls it; expired entries are otherwise dropped lazily when
// GetPrediction reads them.
func (c *TieredCache) SweepPredictions(now time.Time) {
	c.prediction.sweep(now)
}

// Snapshot returns every tracked CommandStats keyed by leading token, the
// shape spec.md §6 mandates for history.json.
func (c *TieredCache) Snapshot() map[string]CommandStats {
	return c.stats.snapshot()
}

// Restore repopulates the CommandStats table from a previously persisted
// snapshot.
func (c *TieredCache) Restore(entries map[string]CommandStats) {
	c.stats.restore(entries)
}

// HotMapSnapshot returns the current hot map contents as prefix→
// completion-text lists, the shape spec.md §6 mandates for
// hotcache.json.
func (c *TieredCache) HotMapSnapshot() map[string][]string {
	return c.hot.snapshot()
}

// RestoreHotMap repopulates the hot map from a previous HotMapSnapshot,
// capped at hotMapCapacity per spec.md §4.5.
func (c *TieredCache) RestoreHotMap(snap map[string][]string) {
	c.hot.restore(snap)
}

// Stats returns tier sizes for the health/diagnostics surface, mirroring
// the teacher's HotCache.Stats() map[string]int convention.
func (c *TieredCache) Stats() map[string]int {
	return map[string]int{
		"ultra_hot_size":     c.ultraHot.len(),
		"hot_map_size":       c.hot.len(),
		"command_stats_size": c.stats.len(),
	}
}
