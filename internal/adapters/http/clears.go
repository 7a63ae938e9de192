package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/domain"
)

func (h *Handlers) ClearPrivate(c *gin.Context) {
	contactID, err := strconv.ParseInt(c.Param("contactId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact id"})
		return
	}
	if err := h.Store.ClearContact(c.Request.Context(), identityFrom(c).ID, domain.UserID(contactID)); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear private chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) ClearRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return
	}
	if err := h.Store.ClearRoom(c.Request.Context(), identityFrom(c).ID, domain.RoomID(roomID)); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear room chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handlers) ClearGlobal(c *gin.Context) {
	if err := h.Store.ClearGlobal(c.Request.Context(), identityFrom(c).ID); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("clear global chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
