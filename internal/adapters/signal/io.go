package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads envelopes sequentially for one connection. Its deferred
// close path runs the unregister-and-offline sequence exactly once, even
// when the peer drops mid-operation.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, id core.Identity, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Int64("user_id", int64(id.ID)).Msg("readPump closing")
		cancel()
		ctl.Registry.Unregister(c)
		ctl.Presence.Offline(context.Background(), id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Int64("user_id", int64(id.ID)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(ctx, id, c, data)
		}
	}
}

// handleFrame multiplexes one inbound envelope by its type discriminator.
// A failure handling one envelope never takes down the pump.
func (ctl *Controller) handleFrame(ctx context.Context, id core.Identity, c *WsSignalConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join_room":
		ctl.handleJoinRoom(id, data)
	case "global_message":
		ctl.handleGlobal(ctx, id, data)
	case "room_message":
		ctl.handleRoom(ctx, id, data)
	case "private_message":
		ctl.handlePrivate(ctx, id, data)
	case "file_message":
		ctl.handleFile(id, data)
	case "call_offer":
		ctl.handleCallOffer(id, c, data)
	case "call_answer":
		ctl.handleCallAnswer(data)
	case "ice_candidate":
		ctl.handleIceCandidate(data)
	case "call_end":
		ctl.handleCallEnd(data)
	case "call_reject":
		ctl.handleCallReject(data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown envelope")
	}
}

func (ctl *Controller) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(core.Frame(b))
}
