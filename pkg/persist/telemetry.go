package persist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	flushBytes    = 8 * 1024
	flushInterval = 1 * time.Second
	sinkQueueSize = 256
)

// Entry is one structured telemetry record.
type Entry struct {
	Time          time.Time
	Level         log.Level
	Message       string
	Fields        map[string]any
	CorrelationID string
}

// Sink is an async, buffered, daily-rotated telemetry writer. Entries
// are accepted on a bounded channel and never block the caller: a full
// queue drops the entry, the same try-and-drop discipline as the
// prediction pipeline's queue.
type Sink struct {
	dir      string
	name     string
	minLevel log.Level

	entries chan Entry
	stop    chan struct{}
	done    chan struct{}

	mu          sync.Mutex
	buf         bytes.Buffer
	writer      *lumberjack.Logger
	currentDate string
}

// NewSink builds a Sink writing logs/<name>_<YYYYMMDD>.log under dir,
// emitting only entries at or above minLevel.
func NewSink(dir, name string, minLevel log.Level) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Sink{
		dir:      dir,
		name:     name,
		minLevel: minLevel,
		entries:  make(chan Entry, sinkQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Log enqueues an entry if it meets minLevel, dropping it silently if
// the queue is full.
func (s *Sink) Log(level log.Level, message string, fields map[string]any, correlationID string) {
	if level < s.minLevel {
		return
	}
	e := Entry{Time: time.Now(), Level: level, Message: message, Fields: fields, CorrelationID: correlationID}
	select {
	case s.entries <- e:
	default:
	}
}

// Run drains the entry channel, buffering formatted lines until either
// flushBytes is reached or flushInterval elapses, until Stop is called.
func (s *Sink) Run() {
	defer close(s.done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case e := <-s.entries:
			s.append(e)
		case <-ticker.C:
			s.flush()
		case <-s.stop:
			s.drain()
			s.flush()
			if s.writer != nil {
				s.writer.Close()
			}
			return
		}
	}
}

func (s *Sink) drain() {
	for {
		select {
		case e := <-s.entries:
			s.append(e)
		default:
			return
		}
	}
}

func (s *Sink) append(e Entry) {
	s.mu.Lock()
	fmt.Fprintf(&s.buf, "%s\t%s\t%s\t%s\t%v\n",
		e.Time.UTC().Format(time.RFC3339Nano), e.Level, e.CorrelationID, e.Message, e.Fields)
	full := s.buf.Len() >= flushBytes
	s.mu.Unlock()

	if full {
		s.flush()
	}
}

func (s *Sink) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf.Len() == 0 {
		return
	}
	s.ensureWriterLocked(time.Now())

	if _, err := s.writer.Write(s.buf.Bytes()); err != nil {
		fmt.Fprintln(os.Stderr, "persist: telemetry write failed:", err)
	}
	s.buf.Reset()
}

// ensureWriterLocked opens a fresh lumberjack writer when the UTC date
// has rolled over since the last write. Caller must hold s.mu.
func (s *Sink) ensureWriterLocked(now time.Time) {
	date := now.UTC().Format("20060102")
	if s.writer != nil && date == s.currentDate {
		return
	}
	if s.writer != nil {
		s.writer.Close()
	}
	s.currentDate = date
	s.writer = &lumberjack.Logger{
		Filename:   filepath.Join(s.dir, "logs", fmt.Sprintf("%s_%s.log", s.name, date)),
		MaxSize:    50,
		MaxBackups: 7,
		Compress:   true,
	}
}

// Stop flushes any buffered entries and closes the underlying file,
// blocking until Run has returned.
func (s *Sink) Stop() {
	close(s.stop)
	<-s.done
}
