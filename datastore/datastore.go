// Package datastore is a small JSON-file key-value store. Values live in
// memory and are flushed to disk periodically and on Close; writes to the
// backing file are atomic (temp file + rename) and skipped when the content
// checksum is unchanged.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Store.
type Options struct {
	FilePath         string
	AutoSaveInterval time.Duration
	Logger           zerolog.Logger
}

// DefaultOptions returns the options used by Open.
func DefaultOptions(filePath string) Options {
	return Options{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		Logger:           zerolog.Nop(),
	}
}

// Store is a persistent map[string]any. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	data         map[string]any
	file         string
	opts         Options
	lastChecksum string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeMu sync.Mutex
	closed  bool
}

// Open creates or loads a store at filePath with default options.
func Open(filePath string) (*Store, error) {
	return OpenWithOptions(DefaultOptions(filePath))
}

// OpenWithOptions creates or loads a store with explicit options.
func OpenWithOptions(opts Options) (*Store, error) {
	if opts.FilePath == "" {
		return nil, fmt.Errorf("datastore: file path cannot be empty")
	}
	if opts.AutoSaveInterval <= 0 {
		opts.AutoSaveInterval = 10 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("datastore: create directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		data:   make(map[string]any),
		file:   opts.FilePath,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := os.Stat(opts.FilePath); os.IsNotExist(err) {
		if err := s.writeFileAtomic([]byte("{}")); err != nil {
			cancel()
			return nil, fmt.Errorf("datastore: init file: %w", err)
		}
	} else if err == nil {
		if err := s.load(); err != nil {
			cancel()
			return nil, err
		}
	} else {
		cancel()
		return nil, fmt.Errorf("datastore: stat file: %w", err)
	}

	s.wg.Add(1)
	go s.autoSave()

	return s, nil
}

// Set stores a key-value pair.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get retrieves a value by key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Keys returns all keys with the given prefix.
func (s *Store) Keys(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys
}

// Save forces an immediate flush to disk.
func (s *Store) Save() error {
	return s.save()
}

// Close stops the auto-save routine and flushes pending data.
func (s *Store) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	s.cancel()
	s.wg.Wait()
	return s.save()
}

func (s *Store) save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("datastore: marshal: %w", err)
	}

	checksum := checksum(data)
	if checksum == s.lastChecksum {
		return nil
	}

	if err := s.writeFileAtomic(data); err != nil {
		return err
	}
	s.lastChecksum = checksum
	return nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("datastore: read file: %w", err)
	}

	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("datastore: invalid JSON in %s: %w", s.file, err)
	}

	s.data = loaded
	s.lastChecksum = checksum(data)
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated store on disk.
func (s *Store) writeFileAtomic(data []byte) error {
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("datastore: write temp file: %w", err)
	}

	f, err := os.OpenFile(tmp, os.O_RDWR, 0644)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: open temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("datastore: sync temp file: %w", err)
	}
	f.Close()

	if err := os.Rename(tmp, s.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("datastore: rename temp file: %w", err)
	}
	return nil
}

func (s *Store) autoSave() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.AutoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.save(); err != nil {
				s.opts.Logger.Error().Err(err).Msg("auto-save failed")
			}
		}
	}
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
