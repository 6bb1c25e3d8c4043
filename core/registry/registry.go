package registry

import (
	"sync"
)

// Registry is a thread-safe key-value store with per-key locking.
// Extension registries (cmd, cron, api, graphql) store their entries here
// and lock the key once applied, making registrations immutable after init.
type Registry struct {
	values sync.Map
	locked sync.Map // key -> struct{}
}

// GlobalRegistry is the process-wide registry instance.
var GlobalRegistry = &Registry{}

// SetGlobal stores a value for a key. Panics if the key is locked.
func (r *Registry) SetGlobal(key string, value interface{}) {
	if r.IsLocked(key) {
		panic("registry: key locked: " + key)
	}
	r.values.Store(key, value)
}

// GetGlobal returns the value for a key.
func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	return r.values.Load(key)
}

// Lock marks a key immutable. Subsequent SetGlobal calls for it panic.
func (r *Registry) Lock(key string) {
	r.locked.Store(key, struct{}{})
}

// IsLocked reports whether a key has been locked.
func (r *Registry) IsLocked(key string) bool {
	_, ok := r.locked.Load(key)
	return ok
}

// UnlockForTesting removes the lock on a key (for tests only).
func (r *Registry) UnlockForTesting(key string) {
	r.locked.Delete(key)
}
