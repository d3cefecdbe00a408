package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextToken is the gin context key holding the caller's token.
const ContextToken = "token"

// RequireToken rejects requests without a "token" query parameter with 422.
// It only checks presence; the note service authenticates the value on
// every operation.
func RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := c.GetQuery("token")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "query parameter 'token' is required"})
			return
		}
		c.Set(ContextToken, token)
		c.Next()
	}
}

// Token returns the token stored by RequireToken.
func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}

// limitKey picks the limiter bucket: a digest of the token when present,
// otherwise the client IP.
func limitKey(c *gin.Context) string {
	if tok := Token(c); tok != "" {
		sum := sha256.Sum256([]byte(tok))
		return "tok:" + hex.EncodeToString(sum[:8])
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
