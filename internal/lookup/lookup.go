// Package lookup provides the in-flight lookup guard: at most one running
// resolution per normalized query key, with guaranteed key release.
package lookup

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is reported by Start when a resolution for the same key
// is still outstanding. It is a control-flow branch, not a failure — the
// caller tells the user to wait.
type ErrAlreadyRunning struct {
	Key string
}

func (e *ErrAlreadyRunning) Error() string {
	return "lookup for " + e.Key + " already in progress"
}

// NormalizeKey case-folds and trims a query into its guard key.
func NormalizeKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// InFlight tracks which query keys currently have a running resolution.
// Safe for concurrent use.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
	log  zerolog.Logger
}

func New(log zerolog.Logger) *InFlight {
	return &InFlight{keys: make(map[string]struct{}), log: log}
}

// Contains reports whether a key has an outstanding resolution.
func (f *InFlight) Contains(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.keys[key]
	return ok
}

// acquire inserts the key if absent, atomically.
func (f *InFlight) acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.keys[key]; exists {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *InFlight) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
}

// Start runs resolve on its own goroutine, holding key for the duration.
// The key is released when resolve returns, whatever the outcome — a
// failed resolution must never block future lookups for the same name.
// Returns *ErrAlreadyRunning without starting anything when the key is
// already held.
func (f *InFlight) Start(ctx context.Context, key string, resolve func(ctx context.Context) error) error {
	if !f.acquire(key) {
		return &ErrAlreadyRunning{Key: key}
	}

	go func() {
		defer f.release(key)
		if err := resolve(ctx); err != nil {
			f.log.Warn().Err(err).Str("key", key).Msg("lookup resolution failed")
		}
	}()

	return nil
}
