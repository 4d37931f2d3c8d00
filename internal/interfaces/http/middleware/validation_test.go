package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	Email  string           `json:"email" binding:"required,email"`
	SKU    string           `json:"sku" binding:"required,sku"`
	Price  *decimal.Decimal `json:"price" binding:"required,decimal_gte0"`
	Status string           `json:"status" binding:"omitempty,order_status"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validatedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"price": req.Price.String()})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func detailFields(resp dto.ErrorResponse) map[string]string {
	fields := make(map[string]string, len(resp.Details))
	for _, d := range resp.Details {
		fields[d.Field] = d.Message
	}
	return fields
}

func TestSetupValidator_CustomTags(t *testing.T) {
	router := validationRouter()

	t.Run("valid payload", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@b.co","sku":"TSHIRT-01","price":"19.99","status":"shipped"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"price":"19.99"}`, w.Body.String())
	})

	t.Run("numeric price and zero are accepted", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@b.co","sku":"A1","price":0}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("reports every failing field by json name", func(t *testing.T) {
		w := postJSON(router, `{"email":"nope","sku":"bad sku!","price":"-1","status":"LOST"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Code)
		fields := detailFields(resp)
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Contains(t, fields["sku"], "SKU")
		assert.Equal(t, "Must be a non-negative amount", fields["price"])
		assert.Contains(t, fields["status"], "PENDING")
	})

	t.Run("missing price is required", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@b.co","sku":"A1"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "This field is required", detailFields(decodeError(t, w))["price"])
	})

	t.Run("oversized sku", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@b.co","sku":"`+strings.Repeat("A", 51)+`","price":"1"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, detailFields(decodeError(t, w)), "sku")
	})
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := validationRouter()

	w := postJSON(router, `{"email":`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, dto.ErrCodeValidation, raw["code"])
	assert.NotContains(t, raw, "details")
}
