package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/pkg/cache"
	"github.com/bastiangx/shellpredict/pkg/trie"
)

// fakeTransport lets tests control every HTTP round trip the resty
// client makes without touching the network.
type fakeTransport struct {
	calls   int64
	respond func(req *http.Request) (*http.Response, error)
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt64(&f.calls, 1)
	return f.respond(req)
}

func jsonResponse(status int, body any) *http.Response {
	buf, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// P5: a successful prediction feeds the suggestion text straight through
// to the caller.
func TestClientPredictSuccess(t *testing.T) {
	ft := &fakeTransport{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, lmResponse{Response: "git commit -m"}), nil
	}}
	c := NewClient("http://lm.local", "tinyllama")
	c.http.SetTransport(ft)

	got, err := c.Predict(context.Background(), "git com")
	if err != nil {
		t.Fatalf("Predict() err = %v", err)
	}
	if got != "git commit -m" {
		t.Fatalf("Predict() = %q", got)
	}
}

// P7 / scenario 5: three consecutive failures trip the breaker, and
// further calls fail fast without reaching the transport.
func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	ft := &fakeTransport{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(500, lmResponse{}), nil
	}}
	c := NewClient("http://lm.local", "tinyllama")
	c.http.SetTransport(ft)

	for i := 0; i < 3; i++ {
		if _, err := c.Predict(context.Background(), "x"); err == nil {
			t.Fatalf("call %d: expected error from failing transport", i)
		}
	}

	callsBeforeOpen := atomic.LoadInt64(&ft.calls)
	if _, err := c.Predict(context.Background(), "x"); err == nil {
		t.Fatal("expected breaker-open error on 4th call")
	}
	if atomic.LoadInt64(&ft.calls) != callsBeforeOpen {
		t.Fatal("expected breaker to short-circuit without calling the transport")
	}
}

func TestPipelineDropsWhenQueueFull(t *testing.T) {
	c := NewClient("http://lm.local", "tinyllama")
	p := NewPipeline(c, cache.New(trie.New()), log.New(io.Discard))

	now := time.Now()
	ok := true
	for i := 0; i < queueCapacity; i++ {
		ok = p.Enqueue("cmd", "/tmp", now) && ok
	}
	if !ok {
		t.Fatal("expected queue to accept up to its capacity")
	}
	if p.Enqueue("one-too-many", "/tmp", now) {
		t.Fatal("expected Enqueue to report false once the queue is full")
	}
}

// P P4/§4.4: a response not already prefixed by the input is treated as
// a bare suffix and concatenated onto it before being cached.
func TestPipelineConcatenatesNonPrefixedSuggestion(t *testing.T) {
	ft := &fakeTransport{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, lmResponse{Response: "  --rm -it ubuntu  "}), nil
	}}
	c := NewClient("http://lm.local", "tinyllama")
	c.http.SetTransport(ft)

	cc := cache.New(trie.New())
	p := NewPipeline(c, cc, log.New(io.Discard))

	req := Request{ID: [16]byte{1}, Input: "docker run", EnqueuedAt: time.Now()}
	p.process(context.Background(), req)

	got, ok := cc.GetPrediction("docker run", time.Now())
	if !ok {
		t.Fatal("expected a cached prediction")
	}
	want := "docker run--rm -it ubuntu"
	if got.Suggestion != want {
		t.Fatalf("Suggestion = %q, want %q", got.Suggestion, want)
	}
}

func TestPipelineDropsStaleRequests(t *testing.T) {
	ft := &fakeTransport{respond: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, lmResponse{Response: "should not be used"}), nil
	}}
	c := NewClient("http://lm.local", "tinyllama")
	c.http.SetTransport(ft)

	cc := cache.New(trie.New())
	p := NewPipeline(c, cc, log.New(io.Discard))

	stale := Request{ID: [16]byte{}, Input: "old", EnqueuedAt: time.Now().Add(-time.Second)}
	p.process(context.Background(), stale)

	if atomic.LoadInt64(&ft.calls) != 0 {
		t.Fatal("expected a stale request to never reach the LM client")
	}
	if _, ok := cc.GetPrediction("old", time.Now()); ok {
		t.Fatal("expected no cached prediction for a dropped stale request")
	}
}
