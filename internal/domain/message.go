package domain

import "time"

// FileType of a file message attachment. The upload endpoints only ever
// produce image or audio; the wire relay passes other values through.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeAudio FileType = "audio"
)

// Message is one chat message row. Exactly one addressing mode holds:
// both RecipientID and RoomID nil means global, RoomID set means room,
// RecipientID set means private. A message is never both.
type Message struct {
	ID          int64     `json:"id,omitempty"`
	SenderID    UserID    `json:"sender_id"`
	Username    string    `json:"username,omitempty"`
	RecipientID *UserID   `json:"recipient_id"`
	RoomID      *RoomID   `json:"room_id"`
	Content     string    `json:"content,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	FileType    FileType  `json:"file_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *Message) IsGlobal() bool  { return m.RoomID == nil && m.RecipientID == nil }
func (m *Message) IsRoom() bool    { return m.RoomID != nil }
func (m *Message) IsPrivate() bool { return m.RoomID == nil && m.RecipientID != nil }
