package auth

import (
	"strings"

	"gameboard/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// bearerIdentity returns the identity carried by the Authorization header.
func bearerIdentity(c *gin.Context, secret string) (Identity, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return Anonymous, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return Anonymous, false
	}
	email, err := jwt.ParseToken(secret, parts[1])
	if err != nil {
		return Anonymous, false
	}
	return Identity{Email: email}, true
}

// OptionalAuthMiddleware inspects for a token and sets the identity if present and valid,
// but does not fail if the token is missing or invalid.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := bearerIdentity(c, secret); ok {
			SetIdentity(c, id)
		}
		c.Next()
	}
}
