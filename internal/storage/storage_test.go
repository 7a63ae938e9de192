package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/campuschat/campuschat/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// A file in a temp dir rather than :memory:, because database/sql
	// pools connections and each :memory: connection is its own database.
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, name string) domain.UserID {
	t.Helper()
	id, err := s.CreateUser(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return id
}

func TestCreateUserAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := mustCreateUser(t, s, "alice")
	if id == 0 {
		t.Fatal("create returned zero id")
	}

	u, hash, err := s.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.ID != id || u.Username != "alice" || hash != "hash" {
		t.Fatalf("lookup returned %+v hash=%q", u, hash)
	}
	if u.IsOnline {
		t.Fatal("new user reported online")
	}

	if _, err := s.CreateUser(ctx, "alice", "other"); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("duplicate username: got %v, want ErrUsernameTaken", err)
	}
	if _, _, err := s.UserByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing user: got %v, want ErrUserNotFound", err)
	}
}

func TestSetOnlineAndListUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bob := mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "alice")

	if err := s.SetOnline(ctx, bob, true); err != nil {
		t.Fatalf("set online: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	// Ordered by username.
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected order: %q, %q", users[0].Username, users[1].Username)
	}
	if users[0].IsOnline || !users[1].IsOnline {
		t.Fatalf("online flags wrong: %+v", users)
	}
}

func TestCreateRoomAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner := mustCreateUser(t, s, "alice")
	room, err := s.CreateRoom(ctx, "general", owner)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if room.ID == 0 || room.Name != "general" {
		t.Fatalf("created room %+v", room)
	}

	if _, err := s.CreateRoom(ctx, "general", owner); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("duplicate room: got %v, want ErrRoomExists", err)
	}

	rooms, err := s.ListRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].ID != room.ID {
		t.Fatalf("listed rooms %+v", rooms)
	}
}

func insertAt(t *testing.T, s *Store, m domain.Message, at time.Time) int64 {
	t.Helper()
	m.CreatedAt = at
	id, err := s.InsertMessage(context.Background(), &m)
	if err != nil {
		t.Fatalf("insert message: %v", err)
	}
	return id
}

func TestMessageRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	now := time.Now().UTC()

	id := insertAt(t, s, domain.Message{SenderID: alice, Content: "hello"}, now)
	if id == 0 {
		t.Fatal("insert returned zero id")
	}

	msgs, err := s.GlobalMessages(ctx, alice, 100)
	if err != nil {
		t.Fatalf("global messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	got := msgs[0]
	if got.ID != id || got.SenderID != alice || got.Content != "hello" || got.Username != "alice" {
		t.Fatalf("round trip %+v", got)
	}
	if got.RoomID != nil || got.RecipientID != nil {
		t.Fatal("global message came back addressed")
	}
	// Millisecond precision survives the text column.
	if got.CreatedAt.Sub(now) > time.Millisecond || now.Sub(got.CreatedAt) > time.Millisecond {
		t.Fatalf("created_at drifted: stored %v, got %v", now, got.CreatedAt)
	}
}

func TestRoomMessagesScopedWithTotal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	room, err := s.CreateRoom(ctx, "general", alice)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	other := domain.RoomID(999)
	now := time.Now().UTC()

	insertAt(t, s, domain.Message{SenderID: alice, RoomID: &room.ID, Content: "in room"}, now)
	insertAt(t, s, domain.Message{SenderID: alice, RoomID: &other, Content: "elsewhere"}, now)
	insertAt(t, s, domain.Message{SenderID: alice, Content: "global"}, now)

	msgs, total, err := s.RoomMessages(ctx, alice, room.ID)
	if err != nil {
		t.Fatalf("room messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "in room" {
		t.Fatalf("room history %+v", msgs)
	}
	if total != 1 {
		t.Fatalf("total %d, want 1", total)
	}
}

func TestPrivateMessagesBothDirections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	carol := mustCreateUser(t, s, "carol")
	now := time.Now().UTC()

	insertAt(t, s, domain.Message{SenderID: alice, RecipientID: &bob, Content: "a to b"}, now)
	insertAt(t, s, domain.Message{SenderID: bob, RecipientID: &alice, Content: "b to a"}, now.Add(time.Second))
	insertAt(t, s, domain.Message{SenderID: alice, RecipientID: &carol, Content: "a to c"}, now)

	msgs, err := s.PrivateMessages(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("private messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want both directions", len(msgs))
	}
	if msgs[0].Content != "a to b" || msgs[1].Content != "b to a" {
		t.Fatalf("pair history %+v", msgs)
	}
}

func TestPrivateClearScopedToViewerNotPair(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	mallory := mustCreateUser(t, s, "mallory")

	past := time.Now().UTC().Add(-time.Hour)
	insertAt(t, s, domain.Message{SenderID: alice, RecipientID: &bob, Content: "a to b"}, past)

	if err := s.ClearContact(ctx, alice, bob); err != nil {
		t.Fatalf("clear contact: %v", err)
	}

	// Alice's own view of the pair is empty after her clear.
	msgs, err := s.PrivateMessages(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("private messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("alice sees %d rows after her clear", len(msgs))
	}

	// A different viewer of the same pair has no clear record and sees
	// the full history.
	msgs, err = s.PrivateMessages(ctx, mallory, alice, bob)
	if err != nil {
		t.Fatalf("private messages for other viewer: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("alice's one-sided clear leaked: viewer sees %d rows, want 1", len(msgs))
	}

	// Bob is a party to the pair but not the one who cleared.
	msgs, err = s.PrivateMessages(ctx, bob, alice, bob)
	if err != nil {
		t.Fatalf("private messages for bob: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("bob sees %d rows, want 1", len(msgs))
	}
}

func TestClearsHideOlderRowsPerViewer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	insertAt(t, s, domain.Message{SenderID: alice, Content: "old"}, past)
	if err := s.ClearGlobal(ctx, alice); err != nil {
		t.Fatalf("clear global: %v", err)
	}
	insertAt(t, s, domain.Message{SenderID: alice, Content: "new"}, future)

	msgs, err := s.GlobalMessages(ctx, alice, 100)
	if err != nil {
		t.Fatalf("global messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "new" {
		t.Fatalf("cleared viewer sees %+v", msgs)
	}

	// The clear is one-sided: bob still sees the full feed.
	msgs, err = s.GlobalMessages(ctx, bob, 100)
	if err != nil {
		t.Fatalf("global messages for bob: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("uncleared viewer sees %d messages, want 2", len(msgs))
	}
}

func TestClearRoomAndContactIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")
	room, err := s.CreateRoom(ctx, "general", alice)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	insertAt(t, s, domain.Message{SenderID: alice, RoomID: &room.ID, Content: "room old"}, past)
	insertAt(t, s, domain.Message{SenderID: alice, RecipientID: &bob, Content: "pm old"}, past)

	if err := s.ClearRoom(ctx, alice, room.ID); err != nil {
		t.Fatalf("clear room: %v", err)
	}

	msgs, _, err := s.RoomMessages(ctx, alice, room.ID)
	if err != nil {
		t.Fatalf("room messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("room clear left %d rows visible", len(msgs))
	}

	// A room clear must not touch the private history.
	pms, err := s.PrivateMessages(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("private messages: %v", err)
	}
	if len(pms) != 1 {
		t.Fatalf("room clear hid private history: %+v", pms)
	}

	if err := s.ClearContact(ctx, alice, bob); err != nil {
		t.Fatalf("clear contact: %v", err)
	}
	pms, err = s.PrivateMessages(ctx, alice, alice, bob)
	if err != nil {
		t.Fatalf("private messages after clear: %v", err)
	}
	if len(pms) != 0 {
		t.Fatalf("contact clear left %d rows visible", len(pms))
	}
}

func TestClearUpsertMovesTimestampForward(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, s, "alice")

	// Two clears for the same scope must not violate the unique
	// constraint; the second one wins.
	if err := s.ClearGlobal(ctx, alice); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := s.ClearGlobal(ctx, alice); err != nil {
		t.Fatalf("second clear: %v", err)
	}

	insertAt(t, s, domain.Message{SenderID: alice, Content: "after"}, time.Now().UTC().Add(time.Hour))
	msgs, err := s.GlobalMessages(ctx, alice, 100)
	if err != nil {
		t.Fatalf("global messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "after" {
		t.Fatalf("post-clear feed %+v", msgs)
	}
}
