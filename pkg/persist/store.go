// Package persist implements the on-disk state layout: a periodic and
// at-shutdown JSON snapshot of the cache's command statistics and hot
// map, plus (telemetry.go) an async structured log sink.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/shellpredict/pkg/cache"
)

const snapshotInterval = 60 * time.Second

const (
	historyFileName  = "history.json"
	hotCacheFileName = "hotcache.json"
)

// Store owns the two on-disk snapshot files and the ticker that keeps
// them current. The full table is rewritten on every flush rather than
// appended to, matching the teacher's SaveConfig/LoadConfig convention
// for its own TOML file.
type Store struct {
	dir    string
	cache  *cache.TieredCache
	logger *log.Logger

	stop chan struct{}
	done chan struct{}
}

// New builds a Store rooted at dir (created if missing).
func New(dir string, c *cache.TieredCache, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, cache: c, logger: logger, stop: make(chan struct{}), done: make(chan struct{})}, nil
}

// Load reads any existing snapshot files and reinserts their contents
// into the cache. Missing files are not an error: a fresh install has
// none.
func (s *Store) Load() error {
	var history map[string]cache.CommandStats
	if err := readJSON(filepath.Join(s.dir, historyFileName), &history); err != nil {
		return err
	}
	if history != nil {
		s.cache.Restore(history)
	}

	var hot map[string][]string
	if err := readJSON(filepath.Join(s.dir, hotCacheFileName), &hot); err != nil {
		return err
	}
	if hot != nil {
		s.cache.RestoreHotMap(hot)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Flush rewrites both snapshot files from current cache state.
func (s *Store) Flush() {
	if err := writeJSON(filepath.Join(s.dir, historyFileName), s.cache.Snapshot()); err != nil {
		s.logger.Error("failed to write history snapshot", "err", err)
	}
	if err := writeJSON(filepath.Join(s.dir, hotCacheFileName), s.cache.HotMapSnapshot()); err != nil {
		s.logger.Error("failed to write hot cache snapshot", "err", err)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Run flushes every snapshotInterval until Stop is called, then flushes
// once more before returning.
func (s *Store) Run() {
	defer close(s.done)
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.stop:
			s.Flush()
			return
		}
	}
}

// Stop signals Run to flush a final time and exit, blocking until it
// has.
func (s *Store) Stop() {
	close(s.stop)
	<-s.done
}
