package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
)

// Presence emits user_online/user_offline to every connection when
// registry membership changes, and mirrors the state into the durable
// online flag. The flag write is best-effort: if it fails the broadcast
// still goes out.
type Presence struct {
	Registry *Registry
	Flags    core.PresenceStore
}

func NewPresence(reg *Registry, flags core.PresenceStore) *Presence {
	return &Presence{Registry: reg, Flags: flags}
}

func (p *Presence) Online(ctx context.Context, id core.Identity) {
	if err := p.Flags.SetOnline(ctx, id.ID, true); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Int64("user_id", int64(id.ID)).Msg("online flag update failed")
	}
	dispatch(p.Registry.All(), presenceEvent{
		Type: "user_online",
		User: userRef{ID: id.ID, Username: id.Username},
	})
}

func (p *Presence) Offline(ctx context.Context, id core.Identity) {
	if err := p.Flags.SetOnline(ctx, id.ID, false); err != nil {
		log.Warn().Err(err).Str("module", "app.presence").Int64("user_id", int64(id.ID)).Msg("offline flag update failed")
	}
	dispatch(p.Registry.All(), presenceEvent{
		Type: "user_offline",
		User: userRef{ID: id.ID},
	})
}
