package cache

import "github.com/bastiangx/shellpredict/pkg/trie"

// ultraHotSeedCount is how many of the canonical seed groups are
// pre-loaded into the ultra-hot slab at construction, per spec.md §4.2's
// "Initialization" paragraph ("Ultra-hot is seeded with the three most
// frequent of these").
const ultraHotSeedCount = 3

// seedGroup is one canonical-prefix seed: a ranked completion list
// pre-loaded into the trie and the hot map when a TieredCache is built,
// giving a cold cache something plausible to rank before any real usage
// signal exists.
type seedGroup struct {
	prefix      string
	completions []ScoredCompletion
}

// seedGroups mirrors the teacher's AddWord bulk-seed approach (data, not
// a loaded file) but scored so ordering survives the trie's own
// score-descending sort. The PowerShell verb prefixes and their leading
// completions come straight out of spec.md §4.2 and §8 scenario 1; the
// single-letter and short seeds cover §8 scenario 3's "git" baseline.
var seedGroups = []seedGroup{
	{prefix: "get-", completions: []ScoredCompletion{
		{Text: "Get-ChildItem", Score: 5},
		{Text: "Get-Content", Score: 4},
		{Text: "Get-Process", Score: 3},
		{Text: "Get-Service", Score: 2},
		{Text: "Get-Help", Score: 1},
	}},
	{prefix: "set-", completions: []ScoredCompletion{
		{Text: "Set-Location", Score: 3},
		{Text: "Set-Content", Score: 2},
		{Text: "Set-Item", Score: 1},
	}},
	{prefix: "new-", completions: []ScoredCompletion{
		{Text: "New-Item", Score: 2},
		{Text: "New-Object", Score: 1},
	}},
	{prefix: "remove-", completions: []ScoredCompletion{
		{Text: "Remove-Item", Score: 2},
		{Text: "Remove-Variable", Score: 1},
	}},
	{prefix: "test-", completions: []ScoredCompletion{
		{Text: "Test-Path", Score: 2},
		{Text: "Test-Connection", Score: 1},
	}},
	{prefix: "start-", completions: []ScoredCompletion{
		{Text: "Start-Process", Score: 2},
		{Text: "Start-Service", Score: 1},
	}},
	{prefix: "stop-", completions: []ScoredCompletion{
		{Text: "Stop-Process", Score: 2},
		{Text: "Stop-Service", Score: 1},
	}},
	{prefix: "g", completions: []ScoredCompletion{{Text: "git", Score: 1.5}}},
	{prefix: "cd", completions: []ScoredCompletion{{Text: "cd", Score: 1}}},
	{prefix: "ls", completions: []ScoredCompletion{{Text: "ls", Score: 1}}},
}

// seed pre-populates t and h from seedGroups and returns the
// ultraHotSeedCount highest-scored groups as ultra-hot slots, most-
// frequent first, for the caller to load into the ultra-hot slab.
func seed(t *trie.Trie, h *hotMap) []ultraHotSlot {
	ranked := make([]seedGroup, len(seedGroups))
	copy(ranked, seedGroups)
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && topScore(ranked[j]) > topScore(ranked[j-1]); j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}

	for _, g := range seedGroups {
		for _, c := range g.completions {
			t.Insert(g.prefix, c.Text, c.Score, 0)
		}
		h.seedEntry(g.prefix, g.completions)
	}

	n := ultraHotSeedCount
	if n > len(ranked) {
		n = len(ranked)
	}
	slots := make([]ultraHotSlot, n)
	for i := 0; i < n; i++ {
		slots[i] = ultraHotSlot{prefix: ranked[i].prefix, completions: ranked[i].completions}
	}
	return slots
}

func topScore(g seedGroup) float64 {
	top := 0.0
	for _, c := range g.completions {
		if c.Score > top {
			top = c.Score
		}
	}
	return top
}
