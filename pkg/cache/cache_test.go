package cache

import (
	"testing"
	"time"

	"github.com/bastiangx/shellpredict/pkg/trie"
)

func newTestCache() *TieredCache {
	return New(trie.New())
}

// Scenario 1: a cold cache still answers from the seeded set, in score
// order.
func TestColdStartServesSeededCompletions(t *testing.T) {
	c := newTestCache()

	got := c.GetCompletions("get-", 3)
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	want := []string{"Get-ChildItem", "Get-Content", "Get-Process"}
	for i, w := range want {
		if got[i].Text != w {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Text, w)
		}
	}
}

// Scenario 3: three acceptances of a multi-word command outrank a
// single-letter seed, because acceptances contribute at score 2.0 versus
// the seed's 1.5.
func TestAcceptanceOutranksSeed(t *testing.T) {
	c := newTestCache()
	now := time.Now()

	for i := 0; i < 3; i++ {
		c.RecordAcceptance("git status", now)
	}

	got := c.GetCompletions("g", 10)
	statusAt, gitAt := -1, -1
	for i, g := range got {
		switch g.Text {
		case "git status":
			statusAt = i
		case "git":
			gitAt = i
		}
	}
	if statusAt < 0 || gitAt < 0 || statusAt > gitAt {
		t.Fatalf("got %+v, want git status ranked ahead of git", got)
	}
}

// P4: cache_prediction followed by get_completions within the TTL
// surfaces the prediction; it also lands in the trie at predictionScore
// so it can still be found afterwards via that layer.
func TestCachePredictionAlsoWritesTrie(t *testing.T) {
	c := newTestCache()
	base := time.Now()

	c.CachePrediction(CachedPrediction{Input: "gst", Suggestion: "git status", CreatedAt: base})

	if _, ok := c.GetPrediction("gst", base.Add(1*time.Second)); !ok {
		t.Fatal("expected prediction to still be fresh at +1s")
	}

	got := c.GetCompletions("gst", 5)
	found := false
	for _, g := range got {
		if g.Text == "git status" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected git status reachable via the trie, got %+v", got)
	}
}

func TestPredictionCacheExpiresAfterTTL(t *testing.T) {
	c := newTestCache()
	base := time.Now()

	c.CachePrediction(CachedPrediction{Input: "docker ru", Suggestion: "n --rm -it ubuntu", CreatedAt: base})

	if _, ok := c.GetPrediction("docker ru", base.Add(1*time.Second)); !ok {
		t.Fatal("expected prediction to still be fresh at +1s")
	}
	if _, ok := c.GetPrediction("docker ru", base.Add(4*time.Second)); ok {
		t.Fatal("expected prediction to have expired by +4s")
	}
}

// The trie layer promotes into the hot map every 10th access; that same
// promotion also puts the entry at the front of the ultra-hot slab, which
// then serves the next lookup.
func TestTrieAccessPromotesIntoHotMapThenUltraHot(t *testing.T) {
	c := newTestCache()
	now := time.Now()

	// "abc" is exactly 3 chars (ancestorDepth) short of "abcdef", so the
	// insert's ancestor-decay propagation reaches the node this test
	// queries.
	c.AddHistoryItem("abcdef", now)
	for i := 0; i < promotionInterval; i++ {
		c.GetCompletions("abc", 5)
	}

	if _, ok := c.hot.lookup("abc"); !ok {
		t.Fatal("expected the 10th trie access to promote into the hot map")
	}

	c.GetCompletions("abc", 5)
	if _, ok := c.ultraHot.lookup("abc"); !ok {
		t.Fatal("expected the hot-map promotion to also load the ultra-hot slab")
	}
}

// A prefix covered by neither the seeded trie/hot-map data nor any prior
// usage falls back to the static pattern table rather than returning
// nothing.
func TestUnseenPrefixFallsBackToPatternTable(t *testing.T) {
	c := newTestCache()

	got := c.GetCompletions("select-", 3)
	if len(got) == 0 {
		t.Fatal("expected fallback pattern matches for an unseeded prefix")
	}
	found := false
	for _, g := range got {
		if g.Text == "Select-Object" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Select-Object among fallback matches, got %+v", got)
	}
}

func TestCommandStatsTableEvictsLeastRecentlyAccessed(t *testing.T) {
	c := newTestCache()
	now := time.Now()

	for i := 0; i < commandStatsCapacity; i++ {
		c.AddHistoryItem(string(rune('a'+i%26))+string(rune('0'+i/26)), now)
	}
	if c.stats.len() != commandStatsCapacity {
		t.Fatalf("len = %d, want %d", c.stats.len(), commandStatsCapacity)
	}

	c.AddHistoryItem("overflow-cmd", now)
	if c.stats.len() != commandStatsCapacity {
		t.Fatalf("expected eviction to hold len at cap, got %d", c.stats.len())
	}
	if s := c.stats.get("a0"); s != nil {
		t.Fatal("expected the least-recently-accessed entry a0 to be evicted")
	}
	if s := c.stats.get("overflow-cmd"); s == nil {
		t.Fatal("expected newly added entry to be present after eviction")
	}
}

func TestCommandStatsKeyedByLeadingToken(t *testing.T) {
	c := newTestCache()
	now := time.Now()

	c.RecordExecution("git status", now)
	c.RecordExecution("git log", now)

	s := c.stats.get("git diff")
	if s == nil {
		t.Fatal("expected both git invocations to share one leading-token row")
	}
	if s.ExecuteCount != 2 {
		t.Fatalf("ExecuteCount = %d, want 2", s.ExecuteCount)
	}
}

func TestWeightRecencyFloor(t *testing.T) {
	s := &CommandStats{ExecuteCount: 1, LastUsed: time.Now().Add(-365 * 24 * time.Hour)}
	w := s.Weight(time.Now())
	if w != executeWeight*minRecencyFloor {
		t.Fatalf("Weight = %v, want %v", w, executeWeight*minRecencyFloor)
	}
}
