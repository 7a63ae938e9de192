package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/campuschat/campuschat/internal/domain"
)

// One-sided clears: the history endpoints hide rows older than the
// caller's clear timestamp, nothing is physically deleted.

func (s *Store) ClearGlobal(ctx context.Context, user domain.UserID) error {
	return s.upsertClear(ctx, user, 0, 0)
}

func (s *Store) ClearRoom(ctx context.Context, user domain.UserID, room domain.RoomID) error {
	return s.upsertClear(ctx, user, int64(room), 0)
}

func (s *Store) ClearContact(ctx context.Context, user, contact domain.UserID) error {
	return s.upsertClear(ctx, user, 0, int64(contact))
}

func (s *Store) upsertClear(ctx context.Context, user domain.UserID, room, contact int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_chat_clears (user_id, room_id, contact_id, cleared_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, room_id, contact_id) DO UPDATE SET cleared_at = excluded.cleared_at`,
		int64(user), room, contact, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("upsert chat clear: %w", err)
	}
	return nil
}
