package predict

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/bastiangx/shellpredict/pkg/cache"
)

const (
	queueCapacity  = 10
	stalenessLimit = 500 * time.Millisecond
)

// Request is a single queued prediction request.
type Request struct {
	ID         uuid.UUID
	Input      string
	Cwd        string
	EnqueuedAt time.Time
}

// Pipeline is the bounded try-and-drop queue and its single background
// worker. Enqueue never blocks: a full queue drops the new request
// rather than applying backpressure to the caller, since a prediction
// that can't be scheduled promptly is better skipped than stale.
type Pipeline struct {
	queue  chan Request
	client *Client
	cache  *cache.TieredCache
	sem    *semaphore.Weighted
	logger *log.Logger
}

// NewPipeline wires client and cache into a ready-to-start Pipeline.
func NewPipeline(client *Client, c *cache.TieredCache, logger *log.Logger) *Pipeline {
	return &Pipeline{
		queue:  make(chan Request, queueCapacity),
		client: client,
		cache:  c,
		sem:    semaphore.NewWeighted(1),
		logger: logger,
	}
}

// Enqueue attempts to schedule a prediction for input, returning false
// if the queue is currently full.
func (p *Pipeline) Enqueue(input, cwd string, now time.Time) bool {
	req := Request{ID: uuid.New(), Input: input, Cwd: cwd, EnqueuedAt: now}
	select {
	case p.queue <- req:
		return true
	default:
		p.logger.Debug("prediction queue full, dropping request", "id", req.ID, "input", input)
		return false
	}
}

// Run drives the single worker until ctx is cancelled. It is meant to be
// started once, in its own goroutine, by the host embedding process.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.queue:
			p.process(ctx, req)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, req Request) {
	if time.Since(req.EnqueuedAt) > stalenessLimit {
		p.logger.Debug("dropping stale prediction request", "id", req.ID, "age", time.Since(req.EnqueuedAt))
		return
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return
	}
	defer p.sem.Release(1)

	prompt := BuildPrompt(req.Input, req.Cwd)
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	raw, err := p.client.Predict(reqCtx, prompt)
	if err != nil {
		p.logger.Debug("lm prediction failed", "id", req.ID, "err", err)
		return
	}
	suggestion := resolveSuggestion(req.Input, raw)
	if suggestion == "" {
		return
	}

	p.cache.CachePrediction(cache.CachedPrediction{
		Input:      req.Input,
		Suggestion: suggestion,
		Tooltip:    "Suggestion",
		CreatedAt:  time.Now(),
	})
}

// resolveSuggestion applies spec.md §4.4's response-handling contract: the
// LM's raw response is trimmed, then returned as-is if it already starts
// with input (case-insensitive); otherwise it is treated as a bare
// completion suffix and concatenated onto input.
func resolveSuggestion(input, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(input)) {
		return trimmed
	}
	return input + trimmed
}
