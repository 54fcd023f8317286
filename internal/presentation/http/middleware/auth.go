package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sangkips/hisab-api/pkg/utils"
)

// SessionKey is the gin context key holding the *account.Session
const SessionKey = "session"

// AuthMiddleware creates a JWT authentication middleware. It builds the
// account session for the request from the access token.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		authenticate(c, jwtManager, parts[1])
	}
}

// StreamAuthMiddleware accepts the access token from the access_token query
// parameter as well, since browser EventSource cannot set headers.
func StreamAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	header := AuthMiddleware(jwtManager)
	return func(c *gin.Context) {
		if token := c.Query("access_token"); token != "" && c.GetHeader("Authorization") == "" {
			authenticate(c, jwtManager, token)
			return
		}
		header(c)
	}
}

func authenticate(c *gin.Context, jwtManager *utils.JWTManager, token string) {
	claims, err := jwtManager.ValidateAccessToken(token)
	if err != nil {
		response.Unauthorized(c, "Invalid or expired token")
		c.Abort()
		return
	}

	c.Set(SessionKey, account.NewSession(claims.UserID, claims.Email))
	c.Next()
}

// GetSession returns the request's account session, or nil when unauthenticated
func GetSession(c *gin.Context) *account.Session {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	sess, _ := v.(*account.Session)
	return sess
}
