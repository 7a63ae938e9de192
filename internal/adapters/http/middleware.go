package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/campuschat/campuschat/internal/core"
)

const identityKey = "identity"

// AuthRequired gates a route group on a Bearer token.
func AuthRequired(verifier core.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := c.GetHeader("Authorization")
		if !strings.HasPrefix(hdr, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token"})
			return
		}
		identity, err := verifier.Verify(strings.TrimPrefix(hdr, "Bearer "))
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) core.Identity {
	id, _ := c.Get(identityKey)
	identity, _ := id.(core.Identity)
	return identity
}
