package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuschat/campuschat/internal/domain"
)

// InsertMessage persists one message row and returns its id. Satisfies
// core.MessageStore for the router; the upload handlers use it directly.
func (s *Store) InsertMessage(ctx context.Context, m *domain.Message) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	var recipient, room any
	if m.RecipientID != nil {
		recipient = int64(*m.RecipientID)
	}
	if m.RoomID != nil {
		room = int64(*m.RoomID)
	}
	var content, fileURL, fileType any
	if m.Content != "" {
		content = m.Content
	}
	if m.FileURL != "" {
		fileURL = m.FileURL
	}
	if m.FileType != "" {
		fileType = string(m.FileType)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (sender_id, recipient_id, room_id, content, file_url, file_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int64(m.SenderID), recipient, room, content, fileURL, fileType, formatTime(m.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert message id: %w", err)
	}
	return id, nil
}

const messageColumns = `m.id, m.sender_id, m.recipient_id, m.room_id, m.content, m.file_url, m.file_type, m.created_at, u.username`

func scanMessage(rows *sql.Rows) (domain.Message, error) {
	var m domain.Message
	var recipient, room sql.NullInt64
	var content, fileURL, fileType sql.NullString
	var created string
	if err := rows.Scan(&m.ID, &m.SenderID, &recipient, &room, &content, &fileURL, &fileType, &created, &m.Username); err != nil {
		return domain.Message{}, fmt.Errorf("scan message: %w", err)
	}
	if recipient.Valid {
		id := domain.UserID(recipient.Int64)
		m.RecipientID = &id
	}
	if room.Valid {
		id := domain.RoomID(room.Int64)
		m.RoomID = &id
	}
	m.Content = content.String
	m.FileURL = fileURL.String
	m.FileType = domain.FileType(fileType.String)
	m.CreatedAt = parseTime(created)
	return m, nil
}

// GlobalMessages returns the global feed as the viewer sees it: rows
// newer than the viewer's one-sided global clear, oldest first.
func (s *Store) GlobalMessages(ctx context.Context, viewer domain.UserID, limit int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.room_id IS NULL AND m.recipient_id IS NULL
		   AND m.created_at > COALESCE(
		     (SELECT cleared_at FROM user_chat_clears
		       WHERE user_id = ? AND room_id = 0 AND contact_id = 0),
		     '1970-01-01')
		 ORDER BY m.id ASC LIMIT ?`, messageColumns),
		int64(viewer), limit)
	if err != nil {
		return nil, fmt.Errorf("global messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

// RoomMessages returns one room's history as the viewer sees it, plus the
// unfiltered total row count for that room.
func (s *Store) RoomMessages(ctx context.Context, viewer domain.UserID, roomID domain.RoomID) ([]domain.Message, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE m.room_id = ?
		   AND m.created_at > COALESCE(
		     (SELECT cleared_at FROM user_chat_clears
		       WHERE user_id = ? AND room_id = ? AND contact_id = 0),
		     '1970-01-01')
		 ORDER BY m.id ASC`, messageColumns),
		int64(roomID), int64(viewer), int64(roomID))
	if err != nil {
		return nil, 0, fmt.Errorf("room messages: %w", err)
	}
	defer rows.Close()
	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages WHERE room_id = ?", int64(roomID)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("room message count: %w", err)
	}
	return msgs, total, nil
}

// PrivateMessages returns the two-way history between a and b. The clear
// filter is keyed to the viewer, who need not be either party: a clear is
// one-sided and must never hide rows from anyone else.
func (s *Store) PrivateMessages(ctx context.Context, viewer, a, b domain.UserID) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM messages m
		 JOIN users u ON u.id = m.sender_id
		 WHERE ((m.sender_id = ? AND m.recipient_id = ?)
		     OR (m.sender_id = ? AND m.recipient_id = ?))
		   AND m.created_at > COALESCE(
		     (SELECT cleared_at FROM user_chat_clears
		       WHERE user_id = ? AND room_id = 0 AND contact_id = ?),
		     '1970-01-01')
		 ORDER BY m.id ASC`, messageColumns),
		int64(a), int64(b), int64(b), int64(a), int64(viewer), int64(b))
	if err != nil {
		return nil, fmt.Errorf("private messages: %w", err)
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]domain.Message, error) {
	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
