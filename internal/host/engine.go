// Package host implements the five-operation embedding contract a host
// process (an editor plugin, a shell integration shim) drives: a single
// synchronous suggestion call plus four feedback callbacks, backed by
// pkg/trie, pkg/cache, pkg/suggest, pkg/predict, and pkg/persist wired
// into one Engine.
package host

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/pkg/cache"
	"github.com/bastiangx/shellpredict/pkg/config"
	"github.com/bastiangx/shellpredict/pkg/persist"
	"github.com/bastiangx/shellpredict/pkg/predict"
	"github.com/bastiangx/shellpredict/pkg/suggest"
	"github.com/bastiangx/shellpredict/pkg/trie"
)

// Suggestion mirrors suggest.Suggestion at the embedding boundary,
// keeping pkg/suggest's internal Score field out of the public contract.
type Suggestion struct {
	Text    string
	Tooltip string
}

// Engine is the host-embeddable core. Construct with New, call
// GetSuggestion on every keystroke the host wants completions for, and
// call the four On* feedback methods as the corresponding real-world
// events happen. Dispose once, at host shutdown.
//
// Every trie write spec.md §4.2 documents lives inside TieredCache's own
// methods, not here: Engine's feedback callbacks are thin delegations.
type Engine struct {
	cache    *cache.TieredCache
	suggest  *suggest.Engine
	pipeline *predict.Pipeline
	store    *persist.Store
	sink     *persist.Sink
	logger   *log.Logger

	defaultLimit int
	cancel       context.CancelFunc
}

// New wires every component per cfg and starts their background
// goroutines (the prediction worker, the persistence ticker, the
// telemetry flusher). It loads any prior on-disk snapshot before
// returning.
func New(cfg *config.Config, stateDir string, logger *log.Logger) (*Engine, error) {
	t := trie.New()
	c := cache.New(t)

	store, err := persist.New(stateDir, c, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		logger.Warn("failed to load prior snapshot, starting cold", "err", err)
	}

	sink, err := persist.NewSink(stateDir, "shellpredict", log.InfoLevel)
	if err != nil {
		return nil, err
	}

	client := predict.NewClient(cfg.LM.Endpoint, cfg.LM.Model)
	pipeline := predict.NewPipeline(client, c, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go store.Run()
	go sink.Run()
	go pipeline.Run(ctx)

	return &Engine{
		cache:        c,
		suggest:      suggest.New(c),
		pipeline:     pipeline,
		store:        store,
		sink:         sink,
		logger:       logger,
		defaultLimit: cfg.CLI.DefaultLimit,
		cancel:       cancel,
	}, nil
}

// GetSuggestion returns ranked completions for the command fragment
// ending at cursorOffset within input (input[:cursorOffset] is the text
// left of the cursor; anything after is ignored). It also opportunistically
// enqueues an LM prediction request for the full left-of-cursor text,
// without waiting on it — GetSuggestion always returns from in-memory
// state only.
func (e *Engine) GetSuggestion(ctx context.Context, input string, cursorOffset int, cwd string) []Suggestion {
	if ctx.Err() != nil {
		return nil
	}

	fragment := extractFragment(input, cursorOffset)
	if fragment == "" {
		return nil
	}

	now := time.Now()
	e.pipeline.Enqueue(leftOfCursor(input, cursorOffset), cwd, now)

	results := e.suggest.GetSuggestion(fragment, e.defaultLimit, now)
	out := make([]Suggestion, len(results))
	for i, r := range results {
		out[i] = Suggestion{Text: r.Text, Tooltip: r.Tooltip}
	}
	return out
}

// OnCommandAccepted records that command was accepted (inserted into the
// input line) without necessarily having been run yet.
func (e *Engine) OnCommandAccepted(command string) {
	e.cache.RecordAcceptance(command, time.Now())
}

// OnCommandExecuted records that command actually ran.
func (e *Engine) OnCommandExecuted(command string) {
	e.cache.RecordExecution(command, time.Now())
}

// OnSuggestionAccepted records that a suggested completion specifically
// (as opposed to manually typed text) was accepted.
func (e *Engine) OnSuggestionAccepted(command string) {
	e.cache.RecordSuggestionAcceptance(command, time.Now())
}

// OnHistoryObserved registers a command seen in shell history at
// startup or via passive observation, the weakest of the four signals.
func (e *Engine) OnHistoryObserved(command string) {
	e.cache.AddHistoryItem(command, time.Now())
}

// Dispose stops the prediction worker and flushes persistence/telemetry
// one final time. Must be called exactly once, at host shutdown.
func (e *Engine) Dispose() {
	e.cancel()
	e.store.Stop()
	e.sink.Stop()
}

// extractFragment isolates the command fragment ending at cursorOffset:
// everything back to the nearest ';' or '|' (or the start of input),
// with leading whitespace trimmed.
func extractFragment(input string, cursorOffset int) string {
	left := leftOfCursor(input, cursorOffset)
	start := 0
	for i := len(left) - 1; i >= 0; i-- {
		if left[i] == ';' || left[i] == '|' {
			start = i + 1
			break
		}
	}
	return strings.TrimLeft(left[start:], " \t")
}

func leftOfCursor(input string, cursorOffset int) string {
	if cursorOffset < 0 {
		cursorOffset = 0
	}
	if cursorOffset > len(input) {
		cursorOffset = len(input)
	}
	return input[:cursorOffset]
}
