package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/domain"
)

func (h *Handlers) ListRooms(c *gin.Context) {
	rooms, err := h.Store.ListRooms(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, emptyIfNilRooms(rooms))
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || domain.ValidateRoomName(req.Name) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room name required"})
		return
	}

	room, err := h.Store.CreateRoom(c.Request.Context(), req.Name, identityFrom(c).ID)
	if errors.Is(err, domain.ErrRoomExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Room already exists"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.Hub.RoomCreated(room)
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *Handlers) RoomMessages(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}

	messages, total, err := h.Store.RoomMessages(c.Request.Context(), identityFrom(c).ID, domain.RoomID(roomID))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("room messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":   roomID,
		"messages": emptyIfNilMessages(messages),
		"total":    total,
	})
}

// PrivateMessages returns the two-way history between the :me and :target
// usernames. The clear filter belongs to the authenticated caller, not to
// :me; the two differ when someone browses a pair they are not part of.
func (h *Handlers) PrivateMessages(c *gin.Context) {
	ctx := c.Request.Context()

	meID, err := h.Store.UserIDByUsername(ctx, c.Param("me"))
	if err == nil {
		var targetID domain.UserID
		targetID, err = h.Store.UserIDByUsername(ctx, c.Param("target"))
		if err == nil {
			messages, qerr := h.Store.PrivateMessages(ctx, identityFrom(c).ID, meID, targetID)
			if qerr != nil {
				log.Error().Err(qerr).Str("module", "adapters.http").Msg("private messages")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"messages": emptyIfNilMessages(messages)})
			return
		}
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	log.Error().Err(err).Str("module", "adapters.http").Msg("resolve usernames")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
