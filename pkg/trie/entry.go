// Package trie implements the concurrent, frecency-ranked prefix index at
// the core of shellpredict. Completions are stored under lowercased
// prefixes in a dense 95-slot child table (the printable ASCII range);
// inputs outside that range fall back to a secondary sparse index, see
// overflow.go.
package trie

import "strings"

// Kind classifies a CompletionEntry by shape, derived from its Text.
type Kind int

const (
	KindHistory Kind = iota
	KindCommand
	KindParameter
	KindPath
	KindAI
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindParameter:
		return "parameter"
	case KindPath:
		return "path"
	case KindAI:
		return "ai"
	default:
		return "history"
	}
}

// ClassifyKind derives a Kind from completion text, per the ordering
// fixed by spec.md §3: parameter > path > command > history.
func ClassifyKind(text string) Kind {
	switch {
	case strings.HasPrefix(text, "-"):
		return KindParameter
	case strings.ContainsAny(text, "/\\"):
		return KindPath
	case strings.Contains(strings.TrimPrefix(text, "-"), "-"):
		return KindCommand
	default:
		return KindHistory
	}
}

// CompletionEntry is a single suggestion stored at a trie node.
type CompletionEntry struct {
	Text           string
	Score          float64
	Kind           Kind
	LastUsedTicks  int64
}

// NewEntry builds an entry with Kind derived from Text per ClassifyKind.
func NewEntry(text string, score float64, ticks int64) CompletionEntry {
	return CompletionEntry{
		Text:          text,
		Score:         score,
		Kind:          ClassifyKind(text),
		LastUsedTicks: ticks,
	}
}

// less reports whether a should sort before b under the node ordering:
// score descending, then last-used descending, then text ascending.
func less(a, b CompletionEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.LastUsedTicks != b.LastUsedTicks {
		return a.LastUsedTicks > b.LastUsedTicks
	}
	return a.Text < b.Text
}
