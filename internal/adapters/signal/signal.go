package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/app"
	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket endpoint: admission, pumps and envelope
// dispatch into the hub components.
type Controller struct {
	Registry  *app.Registry
	Router    *app.Router
	Presence  *app.Presence
	Calls     *app.Broker
	Verifier  core.TokenVerifier
	Directory core.Directory
	Limiter   *MessageRateLimiter

	ReadLimit  int64
	PingPeriod time.Duration
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Open() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal admits one client connection. The bearer token rides on
// the upgrade URL; a missing or invalid one closes the socket with no
// response payload.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	identity, err := ctl.Verifier.Verify(c.Query("token"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("ws admission refused")
		_ = ws.Close()
		return
	}

	conn := newWsSignalConn(ws)
	if err := ctl.Registry.Register(conn, identity); err != nil {
		log.Warn().Err(err).Str("module", "signal").Int64("user_id", int64(identity.ID)).Msg("register failed")
		conn.Close()
		return
	}
	log.Info().Str("module", "signal").Int64("user_id", int64(identity.ID)).Str("username", identity.Username).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	ctl.Presence.Online(ctx, identity)
	ctl.sendInit(ctx, conn)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, identity, conn)
}

type initEvent struct {
	Type  string        `json:"type"`
	Rooms []domain.Room `json:"rooms"`
	Users []domain.User `json:"users"`
}

// sendInit pushes the rooms and users directory once per connection, right
// after admission. A directory read failure degrades to an empty list.
func (ctl *Controller) sendInit(ctx context.Context, conn *WsSignalConn) {
	rooms, err := ctl.Directory.ListRooms(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("init: list rooms")
	}
	users, err := ctl.Directory.ListUsers(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("init: list users")
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	if users == nil {
		users = []domain.User{}
	}
	ctl.sendJSON(conn, initEvent{Type: "init", Rooms: rooms, Users: users})
}
