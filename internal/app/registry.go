package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"voicerooms/internal/domain"
)

// AnonymousName is reported for connections that never registered.
const AnonymousName = "Anonymous"

// Registry maps live connection ids to display names. It holds no
// transport state; the dispatcher owns delivery.
type Registry struct {
	mu    sync.RWMutex
	names map[domain.ConnID]string
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[domain.ConnID]string)}
}

// Register stores the resolved display name for id and returns it. An
// empty requested name gets a generated one. Overwrites any prior entry.
func (r *Registry) Register(id domain.ConnID, requested string) string {
	name := domain.ClampDisplayName(requested)
	if name == "" {
		name = randomDisplayName()
	}
	r.mu.Lock()
	r.names[id] = name
	r.mu.Unlock()
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("name", name).Msg("registered")
	return name
}

func (r *Registry) Lookup(id domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[id]
	return name, ok
}

// DisplayName is Lookup with the anonymous fallback applied.
func (r *Registry) DisplayName(id domain.ConnID) string {
	if name, ok := r.Lookup(id); ok {
		return name
	}
	return AnonymousName
}

// Remove is idempotent; removing an absent id is a no-op.
func (r *Registry) Remove(id domain.ConnID) {
	r.mu.Lock()
	delete(r.names, id)
	r.mu.Unlock()
}
