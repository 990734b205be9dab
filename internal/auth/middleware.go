package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/car-rental-backend/internal/pkg/response"
)

// TokenCookie is the cookie login sets for browser clients.
const TokenCookie = "token"

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>,
// falling back to the token cookie.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if header := c.GetHeader("Authorization"); header != "" {
			scheme, tok, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tok == "" {
				response.Fail(c, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}
			tokenStr = tok
		} else if cookie, err := c.Cookie(TokenCookie); err == nil {
			tokenStr = cookie
		}

		if tokenStr == "" {
			response.Fail(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Store user info into Gin context for later handlers.
		SetIdentity(c, Identity{UserID: claims.Subject, Role: claims.Role})

		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. It must run after AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).IsAdmin() {
			response.Fail(c, http.StatusForbidden, "User role "+roleLabel(c)+" is not authorized to access this route")
			return
		}
		c.Next()
	}
}

func roleLabel(c *gin.Context) string {
	if r := GetRole(c); r != "" {
		return r
	}
	return "unknown"
}
