package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

// fakeConn records every frame offered to it.
type fakeConn struct {
	mu     sync.Mutex
	open   bool
	frames []core.Frame
}

func newFakeConn() *fakeConn { return &fakeConn{open: true} }

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.New("connection closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

// events decodes every received frame into a generic map.
func (c *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.frames))
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			t.Fatalf("received frame is not JSON: %v", err)
		}
		out = append(out, m)
	}
	return out
}

// eventsOfType filters received events by their type discriminator.
func (c *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range c.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

type fakeMessageStore struct {
	mu       sync.Mutex
	inserted []domain.Message
	err      error
	nextID   int64
}

func (s *fakeMessageStore) InsertMessage(_ context.Context, m *domain.Message) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.nextID++
	s.inserted = append(s.inserted, *m)
	return s.nextID, nil
}

func (s *fakeMessageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type fakePresenceStore struct {
	mu     sync.Mutex
	states map[domain.UserID]bool
	err    error
}

func newFakePresenceStore() *fakePresenceStore {
	return &fakePresenceStore{states: make(map[domain.UserID]bool)}
}

func (s *fakePresenceStore) SetOnline(_ context.Context, id domain.UserID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.states[id] = online
	return nil
}

func identity(id int64, name string) core.Identity {
	return core.Identity{ID: domain.UserID(id), Username: name}
}
