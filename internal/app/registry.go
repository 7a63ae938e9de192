package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

var ErrConnClosed = errors.New("connection already closed")

// Registry is the in-memory table of live connections and the identity
// occupying each. One connection binds to exactly one identity; a user id
// may hold any number of concurrent connections (multi-device), and
// delivery by user id fans out to all of them.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.SignalConnection]core.Identity
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.SignalConnection]core.Identity)}
}

// Register binds identity to conn and makes it visible to lookups and
// broadcasts. Fails if the transport is no longer open.
func (r *Registry) Register(conn core.SignalConnection, id core.Identity) error {
	if !conn.Open() {
		return ErrConnClosed
	}
	r.mu.Lock()
	r.conns[conn] = id
	total := len(r.conns)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Int64("user_id", int64(id.ID)).Str("username", id.Username).Int("total", total).Msg("connection registered")
	return nil
}

// Unregister removes the binding. Idempotent; called exactly once from
// the connection close path.
func (r *Registry) Unregister(conn core.SignalConnection) {
	r.mu.Lock()
	id, ok := r.conns[conn]
	delete(r.conns, conn)
	total := len(r.conns)
	r.mu.Unlock()
	if ok {
		log.Info().Str("module", "app.registry").Int64("user_id", int64(id.ID)).Int("total", total).Msg("connection unregistered")
	}
}

// identityOf returns the binding for conn, if any.
func (r *Registry) identityOf(conn core.SignalConnection) (core.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.conns[conn]
	return id, ok
}

// FindByUser returns every connection currently bound to uid.
func (r *Registry) FindByUser(uid domain.UserID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.SignalConnection
	for conn, id := range r.conns {
		if id.ID == uid {
			out = append(out, conn)
		}
	}
	return out
}

// All returns a snapshot of every registered connection. The snapshot is
// copied under the read lock so sends never hold it.
func (r *Registry) All() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.conns))
	for conn := range r.conns {
		out = append(out, conn)
	}
	return out
}
