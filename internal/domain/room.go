package domain

import "errors"

var (
	ErrRoomNameEmpty = errors.New("room name empty")
	ErrRoomExists    = errors.New("room already exists")
)

type RoomID int64

type Room struct {
	ID   RoomID `json:"id"`
	Name string `json:"name"`
}

func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	return nil
}
