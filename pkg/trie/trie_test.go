package trie

import (
	"fmt"
	"sync"
	"testing"
)

// P1: a lookup under a prefix never returns an entry that was not
// inserted under that prefix or a descendant path leading to it.
func TestLookupReturnsOnlyInsertedEntries(t *testing.T) {
	tr := New()
	tr.Insert("get", "Get-Process", 10, 1)
	tr.Insert("set", "Set-Location", 10, 1)

	got := tr.Lookup("get", 10)
	if len(got) != 1 || got[0] != "Get-Process" {
		t.Fatalf("Lookup(get) = %v, want [Get-Process]", got)
	}
}

// P2: ancestor propagation decays geometrically (x0.8 per level) and
// reaches exactly three ancestors, no further.
func TestAncestorDecayPropagation(t *testing.T) {
	tr := New()
	tr.Insert("get-process", "Get-Process", 100, 1)

	full := tr.LookupScored("get-process", 1)
	if len(full) != 1 || full[0].Score != 100 {
		t.Fatalf("terminal score = %+v, want 100", full)
	}

	oneUp := tr.LookupScored("get-proces", 1)
	if len(oneUp) != 1 || oneUp[0].Score != 80 {
		t.Fatalf("1-ancestor score = %+v, want 80", oneUp)
	}

	twoUp := tr.LookupScored("get-proce", 1)
	if len(twoUp) != 1 || twoUp[0].Score != 64 {
		t.Fatalf("2-ancestor score = %+v, want 64", twoUp)
	}

	threeUp := tr.LookupScored("get-proc", 1)
	if len(threeUp) != 1 || threeUp[0].Score != 51.2 {
		t.Fatalf("3-ancestor score = %+v, want 51.2", threeUp)
	}

	fourUp := tr.LookupScored("get-pro", 1)
	if len(fourUp) != 0 {
		t.Fatalf("4-ancestor should receive no propagation, got %+v", fourUp)
	}
}

// P3: a node's entry list never exceeds its capacity, and eviction
// always drops the lowest-scoring entries first.
func TestNodeCapacityEviction(t *testing.T) {
	tr := New()
	for i := 0; i < maxEntriesPerNode+10; i++ {
		tr.Insert("p", fmt.Sprintf("p-word-%02d", i), float64(i), int64(i))
	}

	got := tr.LookupScored("p", maxEntriesPerNode+10)
	if len(got) != maxEntriesPerNode {
		t.Fatalf("len = %d, want %d", len(got), maxEntriesPerNode)
	}
	// Highest-scored (most recently inserted, i=29..10) must have survived.
	for _, e := range got {
		if e.Score < 10 {
			t.Fatalf("low-score entry %+v survived eviction", e)
		}
	}
}

// P6: inserts racing on overlapping and identical prefixes never
// corrupt the tree or lose updates (checked under -race).
func TestConcurrentInsertsAreRaceFree(t *testing.T) {
	tr := New()
	var wg sync.WaitGroup
	words := []string{"get-process", "get-service", "get-item", "get-content"}

	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				w := words[(n+i)%len(words)]
				tr.Insert("get", w, float64(i%20), int64(i))
				tr.Lookup("get", 5)
			}
		}(g)
	}
	wg.Wait()

	got := tr.Lookup("get", len(words))
	if len(got) == 0 {
		t.Fatal("expected surviving entries after concurrent inserts")
	}
}

func TestNonASCIIRoutesToOverflow(t *testing.T) {
	tr := New()
	tr.Insert("café", "café-au-lait", 5, 1)

	nc, _ := tr.Stats()
	if got := tr.Lookup("café", 1); len(got) != 1 || got[0] != "café-au-lait" {
		t.Fatalf("overflow lookup = %v", got)
	}
	if nc == 0 {
		t.Fatal("expected Stats to count the root at minimum")
	}

	// Must not have created any ASCII dense nodes for this key.
	if n := tr.findNode("caf"); n != nil {
		t.Fatal("non-ASCII prefix unexpectedly created ASCII nodes")
	}
}

func TestClearResetsEverything(t *testing.T) {
	tr := New()
	tr.Insert("get", "Get-Process", 10, 1)
	tr.Insert("café", "café-au-lait", 5, 1)

	tr.Clear()

	if got := tr.Lookup("get", 5); len(got) != 0 {
		t.Fatalf("expected empty after Clear, got %v", got)
	}
	if got := tr.Lookup("café", 5); len(got) != 0 {
		t.Fatalf("expected empty overflow after Clear, got %v", got)
	}
	nc, ec := tr.Stats()
	if nc != 1 || ec != 0 {
		t.Fatalf("Stats after Clear = (%d, %d), want (1, 0)", nc, ec)
	}
}

func TestClassifyKind(t *testing.T) {
	cases := map[string]Kind{
		"-Force":       KindParameter,
		"/usr/bin":     KindPath,
		"Get-Process":  KindCommand,
		"ls":           KindHistory,
	}
	for text, want := range cases {
		if got := ClassifyKind(text); got != want {
			t.Errorf("ClassifyKind(%q) = %v, want %v", text, got, want)
		}
	}
}
