package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/adapters/signal"
	"github.com/campuschat/campuschat/internal/config"
)

// SetupRouter wires every HTTP surface: the SPA shell, the upload files,
// the REST API and the websocket endpoint.
func SetupRouter(ctx context.Context, cfg *config.Config, h *Handlers, ws *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.Static("/uploads", cfg.UploadDir)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.GET("/rooms", h.ListRooms)

	// Token rides on the upgrade URL, not the Authorization header.
	api.GET("/ws", func(c *gin.Context) {
		ws.HandleSignal(ctx, c)
	})

	authed := api.Group("", AuthRequired(h.Auth))
	authed.GET("/init", h.Init)
	authed.POST("/rooms", h.CreateRoom)
	authed.GET("/rooms/:id/messages", h.RoomMessages)
	authed.GET("/private/:me/:target", h.PrivateMessages)
	authed.POST("/upload/image", h.UploadImage)
	authed.POST("/upload/voice", h.UploadVoice)
	authed.DELETE("/chat/clear/private/:contactId", h.ClearPrivate)
	authed.DELETE("/chat/clear/room/:roomId", h.ClearRoom)
	authed.DELETE("/chat/clear/global", h.ClearGlobal)

	return r
}
