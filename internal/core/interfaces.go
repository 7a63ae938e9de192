package core

import (
	"context"
	"errors"

	"github.com/campuschat/campuschat/internal/domain"
)

// Frame is one encoded envelope ready for the wire.
type Frame []byte

var ErrInvalidCredential = errors.New("invalid credential")

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Open() bool
	Close()
}

// Identity is the (userId, username) pair bound to a connection for its
// whole lifetime. Resolved once at admission, never re-queried mid-flight.
type Identity struct {
	ID       domain.UserID
	Username string
}

// TokenVerifier validates a bearer credential presented at admission.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}

// MessageStore persists durable message types for the router.
type MessageStore interface {
	InsertMessage(ctx context.Context, m *domain.Message) (int64, error)
}

// PresenceStore keeps the durable online flag. Failures are non-fatal to
// the presence broadcast.
type PresenceStore interface {
	SetOnline(ctx context.Context, id domain.UserID, online bool) error
}

// Directory is the read side the hub needs for the init payload.
type Directory interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}
