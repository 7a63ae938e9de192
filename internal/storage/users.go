package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/campuschat/campuschat/internal/domain"
)

// CreateUser inserts a new account and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&existing)
	if err == nil {
		return 0, domain.ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check username: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user id: %w", err)
	}
	return domain.UserID(id), nil
}

// UserByUsername returns the account and its password hash.
func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var u domain.User
	var hash string
	var online int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, is_online FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &hash, &online)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, "", domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("select user: %w", err)
	}
	u.IsOnline = online != 0
	return u, hash, nil
}

// UserIDByUsername resolves a username for the private-history endpoint.
func (s *Store) UserIDByUsername(ctx context.Context, username string) (domain.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("select user id: %w", err)
	}
	return domain.UserID(id), nil
}

// SetOnline flips the durable presence flag.
func (s *Store) SetOnline(ctx context.Context, id domain.UserID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flag := 0
	if online {
		flag = 1
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE users SET is_online = ? WHERE id = ?", flag, int64(id)); err != nil {
		return fmt.Errorf("set online flag: %w", err)
	}
	return nil
}

// ListUsers returns every account ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, username, is_online FROM users ORDER BY username ASC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var online int
		if err := rows.Scan(&u.ID, &u.Username, &online); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.IsOnline = online != 0
		users = append(users, u)
	}
	return users, rows.Err()
}
