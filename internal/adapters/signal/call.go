package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

func (ctl *Controller) handleCallOffer(id core.Identity, c *WsSignalConn, data []byte) {
	var p struct {
		TargetUserID domain.UserID             `json:"targetUserId"`
		Offer        webrtc.SessionDescription `json:"offer"`
		CallID       string                    `json:"callId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_offer payload")
		return
	}
	if p.CallID == "" || p.TargetUserID == 0 {
		log.Warn().Str("module", "signal").Int64("user_id", int64(id.ID)).Msg("dropped call_offer: missing call id or target")
		return
	}
	ctl.Calls.Offer(c, id, p.TargetUserID, p.CallID, p.Offer)
}

func (ctl *Controller) handleCallAnswer(data []byte) {
	var p struct {
		CallID string                    `json:"callId"`
		Answer webrtc.SessionDescription `json:"answer"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_answer payload")
		return
	}
	ctl.Calls.Answer(p.CallID, p.Answer)
}

func (ctl *Controller) handleIceCandidate(data []byte) {
	var p struct {
		CallID       string                  `json:"callId"`
		Candidate    webrtc.ICECandidateInit `json:"candidate"`
		TargetUserID domain.UserID           `json:"targetUserId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad ice_candidate payload")
		return
	}
	ctl.Calls.Candidate(p.CallID, p.TargetUserID, p.Candidate)
}

func (ctl *Controller) handleCallEnd(data []byte) {
	var p struct {
		CallID string `json:"callId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_end payload")
		return
	}
	ctl.Calls.End(p.CallID)
}

func (ctl *Controller) handleCallReject(data []byte) {
	var p struct {
		CallID string `json:"callId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad call_reject payload")
		return
	}
	ctl.Calls.Reject(p.CallID)
}
