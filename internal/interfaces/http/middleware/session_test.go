package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
)

func sessionRouter() *gin.Engine {
	router := gin.New()
	router.Use(SessionID())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gin": GetSessionID(c),
			"ctx": logger.GetSessionID(c.Request.Context()),
		})
	})
	return router
}

func TestSessionID(t *testing.T) {
	router := sessionRouter()

	t.Run("from header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, "sess-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.JSONEq(t, `{"gin":"sess-1","ctx":"sess-1"}`, w.Body.String())
	})

	t.Run("from query", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?sessionId=sess-2", nil))
		assert.JSONEq(t, `{"gin":"sess-2","ctx":"sess-2"}`, w.Body.String())
	})

	t.Run("header wins over query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test?sessionId=q", nil)
		req.Header.Set(SessionIDHeader, "h")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.JSONEq(t, `{"gin":"h","ctx":"h"}`, w.Body.String())
	})

	t.Run("oversized is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, strings.Repeat("s", MaxSessionIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.JSONEq(t, `{"gin":"","ctx":""}`, w.Body.String())
	})
}
