package app

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

type callState int

const (
	callOffered callState = iota + 1
	callAnswered
)

// call is the transient record of one in-flight signaling handshake.
// Never persisted; once the answer is relayed media flows peer-to-peer
// and the broker's only remaining job is teardown.
type call struct {
	callerID   domain.UserID
	callerName string
	targetID   domain.UserID
	offer      webrtc.SessionDescription
	state      callState
	createdAt  time.Time
}

// Broker relays WebRTC call-setup envelopes between exactly two parties.
// The active-call table is keyed by the caller-supplied call id; the
// broker trusts that id and does not check for collisions. Any event for
// an unknown call id is a no-op, except Offer which always creates a
// fresh record.
type Broker struct {
	registry *Registry

	mu    sync.Mutex
	calls map[string]*call
}

func NewBroker(reg *Registry) *Broker {
	return &Broker{registry: reg, calls: make(map[string]*call)}
}

// Offer starts a handshake. If the target has no bound connection the
// caller's own connection gets a call_failed and no record is created.
func (b *Broker) Offer(from core.SignalConnection, caller core.Identity, targetID domain.UserID, callID string, offer webrtc.SessionDescription) {
	targets := b.registry.FindByUser(targetID)
	if len(targets) == 0 {
		log.Info().Str("module", "app.calls").Str("call_id", callID).Int64("target_id", int64(targetID)).Msg("call offer to offline target")
		dispatch([]core.SignalConnection{from}, callFailedEvent{Type: "call_failed", Reason: "target offline"})
		return
	}

	b.mu.Lock()
	b.calls[callID] = &call{
		callerID:   caller.ID,
		callerName: caller.Username,
		targetID:   targetID,
		offer:      offer,
		state:      callOffered,
		createdAt:  time.Now(),
	}
	b.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call_id", callID).Int64("caller_id", int64(caller.ID)).Int64("target_id", int64(targetID)).Msg("call offered")
	dispatch(targets, callOfferEvent{
		Type:       "call_offer",
		CallerID:   caller.ID,
		CallerName: caller.Username,
		Offer:      offer,
		CallID:     callID,
	})
}

// Answer relays the callee's answer back to the caller. Only valid while
// the record is in the offered state.
func (b *Broker) Answer(callID string, answer webrtc.SessionDescription) {
	b.mu.Lock()
	c, ok := b.calls[callID]
	if !ok || c.state != callOffered {
		b.mu.Unlock()
		log.Warn().Str("module", "app.calls").Str("call_id", callID).Msg("answer for unknown or already answered call")
		return
	}
	c.state = callAnswered
	callerID := c.callerID
	b.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call_id", callID).Msg("call answered")
	dispatch(b.registry.FindByUser(callerID), callAnswerEvent{Type: "call_answer", Answer: answer, CallID: callID})
}

// Candidate is a stateless relay of one ICE candidate to the named user.
func (b *Broker) Candidate(callID string, targetID domain.UserID, cand webrtc.ICECandidateInit) {
	dispatch(b.registry.FindByUser(targetID), iceCandidateEvent{Type: "ice_candidate", Candidate: cand, CallID: callID})
}

// End tears the call down, notifying both parties and removing the
// record. A second End for the same id is a no-op.
func (b *Broker) End(callID string) {
	b.mu.Lock()
	c, ok := b.calls[callID]
	if ok {
		delete(b.calls, callID)
	}
	b.mu.Unlock()
	if !ok {
		return
	}

	log.Info().Str("module", "app.calls").Str("call_id", callID).Msg("call ended")
	ev := callEndEvent{Type: "call_end", CallID: callID}
	dispatch(b.registry.FindByUser(c.callerID), ev)
	dispatch(b.registry.FindByUser(c.targetID), ev)
}

// Reject notifies the caller only and removes the record.
func (b *Broker) Reject(callID string) {
	b.mu.Lock()
	c, ok := b.calls[callID]
	if ok {
		delete(b.calls, callID)
	}
	b.mu.Unlock()
	if !ok {
		return
	}

	log.Info().Str("module", "app.calls").Str("call_id", callID).Msg("call rejected")
	dispatch(b.registry.FindByUser(c.callerID), callRejectedEvent{
		Type:   "call_rejected",
		CallID: callID,
		Reason: "call rejected",
	})
}

// Run sweeps stale records until ctx is done. A peer that crashes while a
// call is in flight never sends call_end, so without the sweep its record
// would leak forever.
func (b *Broker) Run(ctx context.Context, ttl, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sweep(time.Now().Add(-ttl))
		}
	}
}

// sweep evicts every record created before the cutoff.
func (b *Broker) sweep(cutoff time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.calls {
		if c.createdAt.Before(cutoff) {
			delete(b.calls, id)
			log.Warn().Str("module", "app.calls").Str("call_id", id).Int64("caller_id", int64(c.callerID)).Msg("evicted stale call record")
		}
	}
}

func (b *Broker) active(callID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.calls[callID]
	return ok
}
