package app

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

// Outbound envelope shapes. Field names follow the wire contract the
// browser client expects, so they are a mix of snake and camel case.

type userRef struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username,omitempty"`
}

type presenceEvent struct {
	Type string  `json:"type"`
	User userRef `json:"user"`
}

type messageEvent struct {
	Type    string          `json:"type"`
	Message *domain.Message `json:"message"`
}

type roomCreatedEvent struct {
	Type string      `json:"type"`
	Room domain.Room `json:"room"`
}

type callOfferEvent struct {
	Type       string                    `json:"type"`
	CallerID   domain.UserID             `json:"callerId"`
	CallerName string                    `json:"callerName"`
	Offer      webrtc.SessionDescription `json:"offer"`
	CallID     string                    `json:"callId"`
}

type callAnswerEvent struct {
	Type   string                    `json:"type"`
	Answer webrtc.SessionDescription `json:"answer"`
	CallID string                    `json:"callId"`
}

type iceCandidateEvent struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	CallID    string                  `json:"callId"`
}

type callEndEvent struct {
	Type   string `json:"type"`
	CallID string `json:"callId"`
}

type callRejectedEvent struct {
	Type   string `json:"type"`
	CallID string `json:"callId"`
	Reason string `json:"reason"`
}

type callFailedEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// dispatch marshals v once and offers it to every connection in the
// delivery set. Backpressured peers just miss the frame; the event
// protocol has no acknowledgement channel.
func dispatch(conns []core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Msg("marshal outbound envelope")
		return
	}
	for _, conn := range conns {
		_ = conn.TrySend(core.Frame(b))
	}
}
