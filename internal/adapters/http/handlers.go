package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/app"
	"github.com/campuschat/campuschat/internal/auth"
	"github.com/campuschat/campuschat/internal/domain"
	"github.com/campuschat/campuschat/internal/storage"
)

// Handlers is the CRUD glue around the hub: accounts, rooms, history,
// uploads and clears. The hub itself only sees these through its
// collaborator interfaces.
type Handlers struct {
	Store     *storage.Store
	Auth      *auth.Manager
	Hub       *app.Router
	UploadDir string
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username & password required"})
		return
	}
	if err := domain.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	id, err := h.Store.CreateUser(c.Request.Context(), req.Username, hash)
	if errors.Is(err, domain.ErrUsernameTaken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	token, err := h.Auth.Generate(id, req.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "id": id, "username": req.Username})
}

func (h *Handlers) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username & password required"})
		return
	}

	user, hash, err := h.Store.UserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("login lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := auth.CheckPassword(hash, req.Password); errors.Is(err, domain.ErrWrongPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Wrong password"})
		return
	}

	if err := h.Store.SetOnline(c.Request.Context(), user.ID, true); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("login online flag")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	token, err := h.Auth.Generate(user.ID, user.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "id": user.ID, "username": user.Username})
}

// Init returns the directory plus the caller's view of the global feed.
func (h *Handlers) Init(c *gin.Context) {
	identity := identityFrom(c)
	ctx := c.Request.Context()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("init users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	rooms, err := h.Store.ListRooms(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("init rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	messages, err := h.Store.GlobalMessages(ctx, identity.ID, 500)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("init messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":    emptyIfNilUsers(users),
		"rooms":    emptyIfNilRooms(rooms),
		"messages": emptyIfNilMessages(messages),
	})
}

func emptyIfNilUsers(v []domain.User) []domain.User {
	if v == nil {
		return []domain.User{}
	}
	return v
}

func emptyIfNilRooms(v []domain.Room) []domain.Room {
	if v == nil {
		return []domain.Room{}
	}
	return v
}

func emptyIfNilMessages(v []domain.Message) []domain.Message {
	if v == nil {
		return []domain.Message{}
	}
	return v
}
