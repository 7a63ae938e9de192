package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/domain"
)

func (h *Handlers) UploadImage(c *gin.Context) {
	h.upload(c, "images", domain.FileTypeImage)
}

func (h *Handlers) UploadVoice(c *gin.Context) {
	h.upload(c, "voices", domain.FileTypeAudio)
}

// upload stores the file, persists the message row, then hands the
// completed message to the hub for fan-out. The websocket file_message
// path deliberately never persists; this is the one place that does.
func (h *Handlers) upload(c *gin.Context, subdir string, fileType domain.FileType) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file"})
		return
	}

	folder := filepath.Join(h.UploadDir, subdir)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create upload dir")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(folder, name)); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	identity := identityFrom(c)
	fileURL := "/uploads/" + subdir + "/" + name
	m := &domain.Message{
		SenderID: identity.ID,
		Username: identity.Username,
		FileURL:  fileURL,
		FileType: fileType,
	}
	if roomID, ok := formInt(c, "roomId"); ok {
		rid := domain.RoomID(roomID)
		m.RoomID = &rid
	}
	if recipientID, ok := formInt(c, "recipientId"); ok {
		uid := domain.UserID(recipientID)
		m.RecipientID = &uid
	}

	id, err := h.Store.InsertMessage(c.Request.Context(), m)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("persist file message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB error"})
		return
	}
	m.ID = id

	h.Hub.FileNotify(identity, m)
	c.JSON(http.StatusOK, gin.H{"fileUrl": fileURL})
}

func formInt(c *gin.Context, field string) (int64, bool) {
	raw := c.PostForm(field)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
