package suggest

import (
	"testing"
	"time"

	"github.com/bastiangx/shellpredict/pkg/cache"
	"github.com/bastiangx/shellpredict/pkg/trie"
)

func newEngine() *Engine {
	return New(cache.New(trie.New()))
}

func TestGetSuggestionFromCache(t *testing.T) {
	e := newEngine()
	now := time.Now()
	// "get-proces" is exactly 3 chars (the trie's ancestor-decay depth)
	// longer than the "get-pro" fragment queried below, so the insert's
	// propagated entry lands on the node this test looks up.
	e.cache.AddHistoryItem("get-proces", now)

	got := e.GetSuggestion("get-pro", 5, now)
	if len(got) == 0 || got[0].Text != "get-proces" {
		t.Fatalf("got %+v, want first = get-proces", got)
	}
	if got[0].Tooltip != "Complete: ces" {
		t.Fatalf("tooltip = %q, want %q", got[0].Tooltip, "Complete: ces")
	}
}

func TestGetSuggestionDedupesAcrossTiers(t *testing.T) {
	e := newEngine()
	now := time.Now()
	e.cache.RecordExecution("Get-Process", now)

	got := e.GetSuggestion("get-", 10, now)
	seen := map[string]int{}
	for _, s := range got {
		seen[s.Text]++
	}
	for text, count := range seen {
		if count > 1 {
			t.Fatalf("text %q appeared %d times, want at most once", text, count)
		}
	}
}

func TestGetSuggestionEmptyFragmentReturnsNothing(t *testing.T) {
	e := newEngine()
	if got := e.GetSuggestion("   ", 5, time.Now()); len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
}

func TestGetSuggestionFallsBackToShapeGenerators(t *testing.T) {
	e := newEngine()
	now := time.Now()

	got := e.GetSuggestion("--", 3, now)
	if len(got) == 0 {
		t.Fatal("expected long-flag fallback suggestions for '--'")
	}

	got = e.GetSuggestion("$", 3, now)
	if len(got) == 0 || got[0].Text[0] != '$' {
		t.Fatalf("expected variable fallback suggestions for '$', got %+v", got)
	}
}

func TestGetSuggestionCommandGeneratorForUppercaseDash(t *testing.T) {
	e := newEngine()
	got := e.GetSuggestion("Foo-", 3, time.Now())
	if len(got) == 0 {
		t.Fatal("expected command-generator fallback suggestions for 'Foo-'")
	}
}

func TestGetSuggestionUsesCachedPrediction(t *testing.T) {
	e := newEngine()
	now := time.Now()
	e.cache.CachePrediction(cache.CachedPrediction{
		Input:      "docker ru",
		Suggestion: "docker run --rm -it ubuntu",
		Tooltip:    "Suggestion",
		CreatedAt:  now,
	})

	got := e.GetSuggestion("docker ru", 5, now)
	found := false
	for _, s := range got {
		if s.Text == "docker run --rm -it ubuntu" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected cached prediction among results, got %+v", got)
	}
}
