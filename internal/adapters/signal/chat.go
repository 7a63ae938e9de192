package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

// handleJoinRoom acknowledges the client's room switch. Room envelopes are
// delivered to everyone and filtered client-side, so there is no
// membership state to update; the switch is only logged.
func (ctl *Controller) handleJoinRoom(id core.Identity, data []byte) {
	var p struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join_room payload")
		return
	}
	log.Info().Str("module", "signal").Int64("user_id", int64(id.ID)).Int64("room_id", int64(p.RoomID)).Msg("joined room")
}

func (ctl *Controller) handleGlobal(ctx context.Context, id core.Identity, data []byte) {
	var p struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad global_message payload")
		return
	}
	if !ctl.allow(id) {
		return
	}
	ctl.Router.Global(ctx, id, p.Content)
}

func (ctl *Controller) handleRoom(ctx context.Context, id core.Identity, data []byte) {
	var p struct {
		RoomID  domain.RoomID `json:"roomId"`
		Content string        `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad room_message payload")
		return
	}
	if !ctl.allow(id) {
		return
	}
	ctl.Router.Room(ctx, id, p.RoomID, p.Content)
}

func (ctl *Controller) handlePrivate(ctx context.Context, id core.Identity, data []byte) {
	var p struct {
		RecipientID domain.UserID `json:"recipientId"`
		Content     string        `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad private_message payload")
		return
	}
	if !ctl.allow(id) {
		return
	}
	ctl.Router.Private(ctx, id, p.RecipientID, p.Content)
}

// handleFile relays a post-upload notification. The row is already
// persisted by the upload endpoint, so this never writes.
func (ctl *Controller) handleFile(id core.Identity, data []byte) {
	var p struct {
		FileURL     string          `json:"file_path"`
		FileType    domain.FileType `json:"file_type"`
		RoomID      *domain.RoomID  `json:"room_id"`
		RecipientID *domain.UserID  `json:"recipient_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad file_message payload")
		return
	}
	if !ctl.allow(id) {
		return
	}
	ctl.Router.FileNotify(id, &domain.Message{
		FileURL:     p.FileURL,
		FileType:    p.FileType,
		RoomID:      p.RoomID,
		RecipientID: p.RecipientID,
	})
}

func (ctl *Controller) allow(id core.Identity) bool {
	if ctl.Limiter == nil || ctl.Limiter.Allow(id.ID) {
		return true
	}
	log.Warn().Str("module", "signal").Int64("user_id", int64(id.ID)).Msg("message rate limit exceeded")
	return false
}
