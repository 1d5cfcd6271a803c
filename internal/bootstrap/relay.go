package bootstrap

import (
	"sync"

	"wikitrans/internal/ports"
)

// Relay forwards events to a target attached after construction, such as
// the desktop runtime once it has started. Events before that are dropped.
type Relay struct {
	mu     sync.RWMutex
	target ports.EventEmitter
}

func (r *Relay) Attach(e ports.EventEmitter) {
	r.mu.Lock()
	r.target = e
	r.mu.Unlock()
}

func (r *Relay) Emit(name string, payload any) {
	r.mu.RLock()
	t := r.target
	r.mu.RUnlock()
	if t != nil {
		t.Emit(name, payload)
	}
}
