package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

// Router validates inbound chat envelopes, persists the durable ones and
// fans the result out to the computed delivery set.
//
// Validation failures are dropped without a reply to the originator. That
// is the protocol's contract, not an oversight; the drop is logged so it
// stays observable.
type Router struct {
	Registry *Registry
	Messages core.MessageStore
}

func NewRouter(reg *Registry, messages core.MessageStore) *Router {
	return &Router{Registry: reg, Messages: messages}
}

// Global handles a global_message: persisted with no room and no
// recipient, delivered to every connection. Any "Global" sender labeling
// is the rendering client's business; content and username go out as-is.
func (rt *Router) Global(ctx context.Context, sender core.Identity, content string) {
	if content == "" {
		log.Warn().Str("module", "app.router").Int64("sender_id", int64(sender.ID)).Msg("dropped global_message: empty content")
		return
	}
	m := &domain.Message{
		SenderID:  sender.ID,
		Username:  sender.Username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if !rt.persist(ctx, m, "global_message") {
		return
	}
	dispatch(rt.Registry.All(), messageEvent{Type: "global_message", Message: m})
}

// Room handles a room_message. Delivery is to all connections; clients
// filter by room on their side, the router does not restrict to members.
func (rt *Router) Room(ctx context.Context, sender core.Identity, roomID domain.RoomID, content string) {
	if roomID == 0 || content == "" {
		log.Warn().Str("module", "app.router").Int64("sender_id", int64(sender.ID)).Msg("dropped room_message: missing room or content")
		return
	}
	m := &domain.Message{
		SenderID:  sender.ID,
		Username:  sender.Username,
		RoomID:    &roomID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if !rt.persist(ctx, m, "room_message") {
		return
	}
	dispatch(rt.Registry.All(), messageEvent{Type: "room_message", Message: m})
}

// Private handles a private_message: persisted, then delivered to every
// connection of the sender and every connection of the recipient, and to
// nobody else. Multi-device users get it on all their connections.
func (rt *Router) Private(ctx context.Context, sender core.Identity, recipientID domain.UserID, content string) {
	if recipientID == 0 || content == "" {
		log.Warn().Str("module", "app.router").Int64("sender_id", int64(sender.ID)).Msg("dropped private_message: missing recipient or content")
		return
	}
	m := &domain.Message{
		SenderID:    sender.ID,
		Username:    sender.Username,
		RecipientID: &recipientID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if !rt.persist(ctx, m, "private_message") {
		return
	}
	dispatch(rt.pairSet(sender.ID, recipientID), messageEvent{Type: "private_message", Message: m})
}

// FileNotify relays a file_message whose row the upload collaborator has
// already persisted. Room-addressed and unaddressed files go to everyone,
// private ones to sender plus recipient.
func (rt *Router) FileNotify(sender core.Identity, m *domain.Message) {
	if m.FileURL == "" || m.FileType == "" {
		log.Warn().Str("module", "app.router").Int64("sender_id", int64(sender.ID)).Msg("dropped file_message: missing file url or type")
		return
	}
	m.SenderID = sender.ID
	m.Username = sender.Username
	ev := messageEvent{Type: "file_message", Message: m}
	if m.IsPrivate() {
		dispatch(rt.pairSet(sender.ID, *m.RecipientID), ev)
		return
	}
	dispatch(rt.Registry.All(), ev)
}

// RoomCreated announces a freshly created room to every connection.
func (rt *Router) RoomCreated(room domain.Room) {
	dispatch(rt.Registry.All(), roomCreatedEvent{Type: "room_created", Room: room})
}

// persist writes m and fills in its id. A storage failure drops the event
// after logging: a delivered envelope implies a durable row.
func (rt *Router) persist(ctx context.Context, m *domain.Message, kind string) bool {
	id, err := rt.Messages.InsertMessage(ctx, m)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Str("kind", kind).Int64("sender_id", int64(m.SenderID)).Msg("persist message")
		return false
	}
	m.ID = id
	return true
}

// pairSet is the union of both users' connections. When a user messages
// themselves the two sets coincide and each connection still gets one copy.
func (rt *Router) pairSet(a, b domain.UserID) []core.SignalConnection {
	out := rt.Registry.FindByUser(a)
	if a == b {
		return out
	}
	return append(out, rt.Registry.FindByUser(b)...)
}
