// Package cli implements the interactive debug shell used to exercise
// internal/host.Engine without a real host process attached.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/internal/host"
	"github.com/bastiangx/shellpredict/internal/utils"
)

// InputHandler drives host.Engine from stdin lines for local testing.
// Lines prefixed with "!accept ", "!exec ", "!suggest ", or "!history "
// replay the corresponding feedback operation instead of requesting
// suggestions, so a developer can build up frecency state by hand.
type InputHandler struct {
	engine       *host.Engine
	suggestLimit int
	requestCount int
	cwd          string
}

// NewInputHandler builds an InputHandler bound to engine.
func NewInputHandler(engine *host.Engine, limit int) *InputHandler {
	cwd, _ := os.Getwd()
	return &InputHandler{engine: engine, suggestLimit: limit, cwd: cwd}
}

// Start begins the interface loop, reading lines from stdin until EOF
// or an error.
func (h *InputHandler) Start() error {
	log.Print("shellpredict CLI [debug]")
	log.Print("type a command fragment for suggestions, or !accept/!exec/!suggest/!history <cmd>")
	reader := bufio.NewReader(os.Stdin)

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.handleLine(line)
	}
}

func (h *InputHandler) handleLine(line string) {
	h.requestCount++

	switch {
	case strings.HasPrefix(line, "!accept "):
		cmd := strings.TrimPrefix(line, "!accept ")
		h.engine.OnCommandAccepted(cmd)
		log.Infof("recorded acceptance: %s", cmd)
	case strings.HasPrefix(line, "!exec "):
		cmd := strings.TrimPrefix(line, "!exec ")
		h.engine.OnCommandExecuted(cmd)
		log.Infof("recorded execution: %s", cmd)
	case strings.HasPrefix(line, "!suggest "):
		cmd := strings.TrimPrefix(line, "!suggest ")
		h.engine.OnSuggestionAccepted(cmd)
		log.Infof("recorded suggestion acceptance: %s", cmd)
	case strings.HasPrefix(line, "!history "):
		cmd := strings.TrimPrefix(line, "!history ")
		h.engine.OnHistoryObserved(cmd)
		log.Infof("recorded history item: %s", cmd)
	default:
		h.handleSuggestion(line)
	}
}

func (h *InputHandler) handleSuggestion(fragment string) {
	start := time.Now()
	results := h.engine.GetSuggestion(context.Background(), fragment, len(fragment), h.cwd)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for fragment %q", elapsed, fragment)

	if len(results) == 0 {
		log.Warnf("No suggestions found for: %q", fragment)
		return
	}

	log.Printf("Found %d suggestions for %q:", len(results), fragment)
	ranks := utils.CreateRankList(len(results))
	for i, s := range results {
		clText := fmt.Sprintf("\033[38;5;75m%s\033[0m", s.Text)
		log.Printf("%2d. %-40s %s", ranks[i], clText, s.Tooltip)
	}
}
