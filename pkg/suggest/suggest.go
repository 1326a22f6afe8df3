// Package suggest orchestrates pkg/cache into the ranked, deduplicated
// suggestion list the host embedding contract returns. It
// performs no I/O and never blocks: everything here is in-memory lookup
// and generation, with LM predictions layered in separately by whatever
// already sits in the cache's prediction tier.
package suggest

import (
	"strings"
	"time"

	"github.com/bastiangx/shellpredict/internal/utils"
	"github.com/bastiangx/shellpredict/pkg/cache"
)

// Suggestion is a single ranked candidate with a synthesized tooltip.
type Suggestion struct {
	Text    string
	Tooltip string
	Score   float64
}

// Engine combines a TieredCache into the ranked suggestion pipeline:
// trim, threshold, query, dedupe, sort, limit — the same shape as the
// teacher's Completer.Complete, generalized past single-word completion.
// The trie itself is not a separate collaborator here: TieredCache owns
// it and folds it into GetCompletions as its own internal layer, per
// spec.md §4.2.
type Engine struct {
	cache *cache.TieredCache
}

// New builds an Engine over the given TieredCache.
func New(c *cache.TieredCache) *Engine {
	return &Engine{cache: c}
}

// minFragmentLength mirrors the teacher's minimum-threshold idea: below
// this length a prefix is too unspecific to rank usefully, so only the
// static/shape fallbacks apply.
const minFragmentLength = 1

// GetSuggestion returns up to k ranked suggestions for fragment (the
// command-or-argument text immediately left of the cursor, already
// extracted by the caller). now is injected for testability.
func (e *Engine) GetSuggestion(fragment string, k int, now time.Time) []Suggestion {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" || k <= 0 {
		return nil
	}
	if len(trimmed) < minFragmentLength || !utils.IsValidInput(trimmed) {
		return e.fromPattern(trimmed, k)
	}

	filter := utils.NewSuggestionFilter(trimmed)
	candidates := make([]Suggestion, 0, k*2)

	for _, sc := range e.cache.GetCompletions(trimmed, k*2) {
		if !filter.ShouldInclude(sc.Text) {
			continue
		}
		candidates = append(candidates, e.build(trimmed, sc.Text, sc.Score))
	}

	if pred, ok := e.cache.GetPrediction(fragment, now); ok && filter.ShouldInclude(pred.Suggestion) {
		candidates = append(candidates, Suggestion{
			Text:    pred.Suggestion,
			Tooltip: nonEmpty(pred.Tooltip, "Suggestion"),
			Score:   0.5,
		})
	}

	if len(candidates) == 0 {
		return e.fromPattern(trimmed, k)
	}

	sortByScore(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

// build synthesizes a tooltip: "Complete: <suffix>" when text literally
// extends fragment, "Suggestion" otherwise (e.g. an LM or pattern-table
// result unrelated lexically to the typed text).
func (e *Engine) build(fragment, text string, score float64) Suggestion {
	tooltip := "Suggestion"
	if utils.HasPrefixIgnoreCase(text, fragment) && len(text) > len(fragment) {
		tooltip = "Complete: " + text[len(fragment):]
	}
	return Suggestion{Text: text, Tooltip: tooltip, Score: score}
}

func (e *Engine) fromPattern(fragment string, k int) []Suggestion {
	gen := generate(fragment, k)
	out := make([]Suggestion, len(gen))
	for i, text := range gen {
		out[i] = e.build(fragment, text, 0)
	}
	return out
}

func sortByScore(s []Suggestion) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Score > s[j-1].Score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
