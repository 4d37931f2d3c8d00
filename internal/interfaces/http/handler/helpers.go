package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// resolveOwner picks the cart owner: the authenticated user, else the
// session id from the header or query (resolved by middleware.SessionID),
// else the sessionId JSON field passed as bodySessionID.
func resolveOwner(c *gin.Context, bodySessionID string) (cart.Owner, error) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		sessionID = bodySessionID
	}
	return cart.NewOwner(middleware.GetUserUUID(c), sessionID)
}

// optionalUUIDQuery parses an optional UUID query parameter. An empty value
// yields nil; a malformed one reports ok=false.
func optionalUUIDQuery(values url.Values, key string) (*uuid.UUID, bool) {
	raw := values.Get(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
