package cache

import (
	"sync"
	"time"
)

const predictionTTL = 3 * time.Second

// CachedPrediction is an LM-sourced suggestion held for predictionTTL,
// keyed on the full input line rather than a leading token, since an
// LM prediction is conditioned on the whole line.
type CachedPrediction struct {
	Input      string
	Suggestion string
	Tooltip    string
	CreatedAt  time.Time
}

func (c CachedPrediction) expired(now time.Time) bool {
	return now.Sub(c.CreatedAt) >= predictionTTL
}

// predictionCache holds at most one in-flight/recent prediction per
// full input string, expiring entries lazily on read.
type predictionCache struct {
	mu      sync.Mutex
	entries map[string]CachedPrediction
}

func newPredictionCache() *predictionCache {
	return &predictionCache{entries: make(map[string]CachedPrediction)}
}

func (p *predictionCache) get(input string, now time.Time) (CachedPrediction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c, ok := p.entries[input]
	if !ok {
		return CachedPrediction{}, false
	}
	if c.expired(now) {
		delete(p.entries, input)
		return CachedPrediction{}, false
	}
	return c, true
}

func (p *predictionCache) put(c CachedPrediction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[c.Input] = c
}

// sweep drops every expired entry; called opportunistically rather than
// on a dedicated ticker, since the tier is read far more often than it
// grows.
func (p *predictionCache) sweep(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, c := range p.entries {
		if c.expired(now) {
			delete(p.entries, k)
		}
	}
}
