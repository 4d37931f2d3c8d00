package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// SessionIDKey is the gin context key for the guest session id
const SessionIDKey = "session_id"

// MaxSessionIDLength bounds client supplied session ids
const MaxSessionIDLength = 128

// SessionID resolves the guest session id from the X-Session-ID header or
// the sessionId query parameter. Oversized values are ignored.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader(SessionIDHeader))
		if sessionID == "" {
			sessionID = strings.TrimSpace(c.Query("sessionId"))
		}
		if sessionID != "" && len(sessionID) <= MaxSessionIDLength {
			c.Set(SessionIDKey, sessionID)
			c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))
		}
		c.Next()
	}
}

// GetSessionID returns the session id resolved by SessionID
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
