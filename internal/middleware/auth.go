// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// AuthRequired verifies the bearer token issued by the auth service and puts
// the caller's id and email on the context.
func AuthRequired(verifier *utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := verifier.Validate(token)
		if err != nil {
			logrus.WithError(err).Debug("Rejected bearer token")
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(verifier *utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := verifier.Validate(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminRequired must run after AuthRequired. The allowlist is checked on
// every request against the verified email claim.
func AdminRequired(authz *services.AuthorizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actor services.Actor
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			actor.UserID, _ = uuid.Parse(userID)
		}
		actor.Email = utils.GetUserEmailFromContext(c)

		if !authz.IsActorAdmin(actor) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c *gin.Context, claims *utils.JWTClaims) {
	c.Set(utils.ContextUserID, claims.Subject)
	c.Set(utils.ContextUserEmail, claims.Email)
}
