package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuschat/campuschat/internal/domain"
)

// ListRooms returns every room ordered by id.
func (s *Store) ListRooms(ctx context.Context) ([]domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM rooms ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var r domain.Room
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// CreateRoom inserts a room owned by createdBy.
func (s *Store) CreateRoom(ctx context.Context, name string, createdBy domain.UserID) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM rooms WHERE name = ?", name).Scan(&existing)
	if err == nil {
		return domain.Room{}, domain.ErrRoomExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, fmt.Errorf("check room: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO rooms (name, created_by) VALUES (?, ?)", name, int64(createdBy))
	if err != nil {
		return domain.Room{}, fmt.Errorf("insert room: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Room{}, fmt.Errorf("insert room id: %w", err)
	}
	return domain.Room{ID: domain.RoomID(id), Name: name}, nil
}
