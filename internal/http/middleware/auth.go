// Package middleware – bearer token authentication.
//
// This file guards routes that require an authenticated account. It parses
// the Authorization header, verifies the JWT through the supplied verifier,
// and stashes the subject's user id in the Gin context under "userID" for
// handlers and sibling middleware (idempotency, rate limiting).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the Gin context key under which the authenticated user id
// is stored.
const ContextUserID = "userID"

// TokenVerifier validates a compact JWT and returns the subject user id.
// Implemented by services.AuthService.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// RequireAuth rejects requests without a valid "Bearer <token>" Authorization
// header. On success the user id is placed in the context under
// ContextUserID.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}
		userID, err := verifier.VerifyToken(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header value.
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// unauthorized aborts with the standard error envelope. The shape matches
// handlers.ErrorResponse; it is duplicated here to avoid an import cycle.
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
