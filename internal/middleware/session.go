package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
)

// RejectRevokedSession rejects tokens that were logged out.
// It runs after one of the JWT middlewares has stored the claims.
func RejectRevokedSession(authService *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		err := authService.CheckRevoked(c.Request.Context(), claims)
		switch {
		case errors.Is(err, service.ErrTokenRevoked):
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		case err != nil:
			// Redis down: let the token through, it is still signed and unexpired.
			log.Warn().Err(err).Str("user_id", claims.UserID.String()).Msg("Revocation check failed")
		}

		c.Next()
	}
}
