package ginserver

import (
	"strings"

	gin "github.com/gin-gonic/gin"

	"gardiens/internal/app/policies"
)

// Credential copies the bearer token into the request context. Tokens are
// opaque here; the upstream backend is the one that validates them.
func Credential() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(policies.ContextWithCredential(c.Request.Context(), token))
		}
		c.Next()
	}
}

func credentialOf(c *gin.Context) string {
	token, _ := policies.CredentialFromContext(c.Request.Context())
	return token
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
