package host

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/pkg/config"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	e, err := New(cfg, t.TempDir(), log.New(io.Discard))
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	t.Cleanup(e.Dispose)
	return e
}

// Scenario 1: a cold engine answers "Get-" from the seeded set, ranked by
// score, with no prior history or accepted commands.
func TestNewEngineColdStartServesSeededCompletions(t *testing.T) {
	e := newTestEngine(t)

	got := e.GetSuggestion(context.Background(), "Get-", len("Get-"), "")
	if len(got) == 0 || got[0].Text != "Get-ChildItem" {
		t.Fatalf("got %+v, want first = Get-ChildItem", got)
	}
}

// Scenario 3: three acceptances of "git status" outrank the seeded
// single-letter "g"→git entry.
func TestNewEngineAcceptanceOutranksSeed(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 3; i++ {
		e.OnCommandAccepted("git status")
	}

	got := e.GetSuggestion(context.Background(), "g", 1, "")
	statusAt, gitAt := -1, -1
	for i, s := range got {
		switch s.Text {
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

func TestExtractFragmentStopsAtPipe(t *testing.T) {
	cases := []struct {
		input  string
		cursor int
		want   string
	}{
		{"git status | grep mod", 22, "grep mod"},
		{"echo hi; get-pro", 17, "get-pro"},
		{"get-pro", 7, "get-pro"},
		{"echo hi;   get-pro", 18, "get-pro"},
	}
	for _, c := range cases {
		if got := extractFragment(c.input, c.cursor); got != c.want {
			t.Errorf("extractFragment(%q, %d) = %q, want %q", c.input, c.cursor, got, c.want)
		}
	}
}

func TestExtractFragmentClampsOutOfRangeCursor(t *testing.T) {
	if got := extractFragment("abc", 100); got != "abc" {
		t.Errorf("got %q, want abc", got)
	}
	if got := extractFragment("abc", -5); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
