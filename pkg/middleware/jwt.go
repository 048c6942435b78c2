package middleware

import (
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware resolves the bearer token of a request to a user. On
// success userID, email and claims are set on the context.
func NewJWTMiddleware(s *security.Sessions, a *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Not authenticated",
				"requestID": requestID,
			})
			return
		}

		claims, err := s.Resolve(c.Request.Context(), tokenStr)
		if err != nil {
			if errors.Is(err, security.ErrInvalidToken) || errors.Is(err, security.ErrRevokedToken) {
				zap.L().Debug("Rejected token", zap.Error(err), zap.String("requestID", requestID))

				c.Header("WWW-Authenticate", "Bearer")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Could not validate credentials",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to resolve token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		// The account may have been removed or disabled after the token was issued
		user, err := a.ByEmail(c.Request.Context(), claims.Email())
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Could not validate credentials",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Inactive user",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", user.ID)
		c.Set("email", user.Email)
		c.Set("claims", claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
