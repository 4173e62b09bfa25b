// Package auth guards the admin surface with HTTP basic credentials.
package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CredentialsProvider supplies the expected admin credentials.
type CredentialsProvider interface {
	Credentials() (username, password string, ok bool)
}

// StaticCredentials serves credentials loaded from the environment. Empty
// credentials disable the admin surface entirely.
type StaticCredentials struct {
	Username string
	Password string
}

func (s StaticCredentials) Credentials() (string, string, bool) {
	if s.Username == "" || s.Password == "" {
		return "", "", false
	}
	return s.Username, s.Password, true
}

// Middleware enforces basic auth against the provider. When no credentials
// are configured every request is rejected rather than let the admin routes
// fall open.
func Middleware(provider CredentialsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		wantUser, wantPass, ok := provider.Credentials()
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access is not configured"})
			return
		}
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !secureEqual(user, wantUser) || !secureEqual(pass, wantPass) {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Next()
	}
}

func secureEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
