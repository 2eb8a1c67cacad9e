package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/auth"
	"github.com/suPer8Hu/pawtrip/internal/chat"
)

const UserKeyKey = "user_key"

// OptionalAuth resolves the caller from a Bearer token. Requests without
// a valid token continue as the anonymous user.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := chat.AnonymousUser
		h := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(token) != "" {
			if uid, err := auth.ParseJWT(secret, strings.TrimSpace(token)); err == nil {
				key = strconv.FormatUint(uid, 10)
			}
		}
		c.Set(UserKeyKey, key)
		c.Next()
	}
}

// UserKey returns the caller resolved by OptionalAuth.
func UserKey(c *gin.Context) string {
	if v := c.GetString(UserKeyKey); v != "" {
		return v
	}
	return chat.AnonymousUser
}
