// Package ipcserver implements MessagePack-over-stdio transport around
// internal/host.Engine's five operations, for a host process (an editor
// plugin, a shell integration shim) that drives the engine as a
// subprocess rather than linking it directly.
package ipcserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/shellpredict/internal/host"
	"github.com/bastiangx/shellpredict/pkg/config"
)

// Server decodes one MessagePack request at a time from stdin and
// writes one MessagePack response per request to stdout, atomically.
type Server struct {
	engine     *host.Engine
	config     *config.Config
	configPath string

	decoder      *msgpack.Decoder
	writeMutex   sync.Mutex
	requestCount int64
}

// NewServer wires engine to a fresh decoder over os.Stdin.
func NewServer(engine *host.Engine, cfg *config.Config, configPath string) *Server {
	return &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(os.Stdin),
	}
}

func (s *Server) reloadConfig() {
	newConfig, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("Failed to reload config, keeping current: %v", err)
		return
	}
	s.config = newConfig
}

// Start runs the request loop until stdin closes or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting MessagePack IPC server")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := s.processRequest(ctx); err != nil {
			if err == io.EOF {
				log.Debug("Client disconnected")
				return nil
			}
			continue
		}
	}
}

// request is the raw wire shape shared by all five operations; not
// every field applies to every action.
type request struct {
	Id      string `msgpack:"id"`
	Action  string `msgpack:"action"`
	Input   string `msgpack:"input"`
	Cursor  int    `msgpack:"cursor"`
	Cwd     string `msgpack:"cwd"`
	Command string `msgpack:"command"`
}

type suggestionItem struct {
	Text    string `msgpack:"text"`
	Tooltip string `msgpack:"tooltip"`
}

type suggestionResponse struct {
	Id          string           `msgpack:"id"`
	Suggestions []suggestionItem `msgpack:"suggestions"`
	Count       int              `msgpack:"count"`
	TimeTakenUs int64            `msgpack:"time_taken_us"`
}

type ackResponse struct {
	Id     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

type errorResponse struct {
	Id    string `msgpack:"id"`
	Error string `msgpack:"error"`
	Code  int    `msgpack:"code"`
}

func (s *Server) processRequest(ctx context.Context) error {
	s.requestCount++
	if s.requestCount%100 == 0 {
		s.reloadConfig()
	}

	var req request
	if err := s.decoder.Decode(&req); err != nil {
		return err
	}

	switch req.Action {
	case "get_suggestion":
		return s.handleGetSuggestion(ctx, req)
	case "on_command_accepted":
		s.engine.OnCommandAccepted(req.Command)
		return s.sendResponse(&ackResponse{Id: req.Id, Status: "ok"})
	case "on_command_executed":
		s.engine.OnCommandExecuted(req.Command)
		return s.sendResponse(&ackResponse{Id: req.Id, Status: "ok"})
	case "on_suggestion_accepted":
		s.engine.OnSuggestionAccepted(req.Command)
		return s.sendResponse(&ackResponse{Id: req.Id, Status: "ok"})
	case "on_history_observed":
		s.engine.OnHistoryObserved(req.Command)
		return s.sendResponse(&ackResponse{Id: req.Id, Status: "ok"})
	default:
		return s.sendError(req.Id, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleGetSuggestion(ctx context.Context, req request) error {
	if req.Input == "" {
		return s.sendError(req.Id, "empty input", 400)
	}

	start := time.Now()
	results := s.engine.GetSuggestion(ctx, req.Input, req.Cursor, req.Cwd)
	elapsed := time.Since(start)

	items := make([]suggestionItem, len(results))
	for i, r := range results {
		items[i] = suggestionItem{Text: r.Text, Tooltip: r.Tooltip}
	}

	return s.sendResponse(&suggestionResponse{
		Id:          req.Id,
		Suggestions: items,
		Count:       len(items),
		TimeTakenUs: elapsed.Microseconds(),
	})
}

// sendResponse encodes and writes response atomically, mirroring the
// buffer-then-write-then-sync discipline of the teacher's msgpack server.
func (s *Server) sendResponse(response any) error {
	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(response); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return os.Stdout.Sync()
}

func (s *Server) sendError(id, message string, code int) error {
	return s.sendResponse(&errorResponse{Id: id, Error: message, Code: code})
}
