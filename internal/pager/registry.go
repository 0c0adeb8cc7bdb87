package pager

import "sync"

// Instance is the type-erased handle the registry keeps per live message.
type Instance interface {
	HandleControl(controlID string)
}

// Registry routes control clicks to the embed that owns the clicked message.
// Clicks for untracked messages (deleted, superseded, foreign) are dropped.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]Instance
}

func NewRegistry() *Registry {
	return &Registry{instances: make(map[string]Instance)}
}

func (r *Registry) add(messageID string, inst Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[messageID] = inst
}

func (r *Registry) remove(messageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, messageID)
}

// Dispatch hands a click to the owning embed. Returns false for stale
// events, which is a normal condition and not an error.
func (r *Registry) Dispatch(messageID, controlID string) bool {
	r.mu.RLock()
	inst, ok := r.instances[messageID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	inst.HandleControl(controlID)
	return true
}

// Tracked reports whether a message currently has a live embed.
func (r *Registry) Tracked(messageID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.instances[messageID]
	return ok
}
