package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appcart "github.com/storefront/backend/internal/application/cart"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	appidentity "github.com/storefront/backend/internal/application/identity"
	appreport "github.com/storefront/backend/internal/application/report"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testEnv is a storefront API wired to an in-memory sqlite database
type testEnv struct {
	db       *gorm.DB
	engine   *gin.Engine
	jwt      *auth.JWTService
	category *catalog.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(db))

	log := zap.NewNop()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-at-least-32-chars",
		RefreshSecret:          "handler-test-refresh-secret-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "storefront-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	productRepo := persistence.NewGormProductRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	addressRepo := persistence.NewGormAddressRepository(db)
	txScope := persistence.NewGormTransactionScope(db)
	pricing := trade.DefaultPricingPolicy()

	cartService := appcart.NewCartService(cartRepo, productRepo, pricing, log)
	orderService := apptrade.NewOrderService(orderRepo, cartRepo, txScope, trade.NewTimestampOrderNumberGenerator(), pricing, log)
	idempotency := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idempotency.Close() })
	orderService.SetIdempotencyStore(idempotency, time.Hour)

	authHandler := NewAuthHandler(appidentity.NewAuthService(userRepo, jwtService, blacklist, cartService, log))
	productHandler := NewProductHandler(appcatalog.NewProductService(productRepo, categoryRepo, txScope, log))
	categoryHandler := NewCategoryHandler(appcatalog.NewCategoryService(categoryRepo, productRepo))
	cartHandler := NewCartHandler(cartService)
	orderHandler := NewOrderHandler(orderService)
	adminOrderHandler := NewAdminOrderHandler(orderService)
	addressHandler := NewAddressHandler(appidentity.NewAddressService(addressRepo, txScope))
	customerHandler := NewCustomerHandler(appidentity.NewCustomerService(userRepo, orderRepo))
	dashboardHandler := NewDashboardHandler(appreport.NewDashboardService(
		persistence.NewGormReportRepository(db), orderRepo, productRepo, userRepo))

	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: jwtService, TokenBlacklist: blacklist}
	optional := middleware.OptionalJWTAuthMiddleware(jwtCfg)
	required := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.SessionID())
	engine.GET("/health", NewHealthHandler("test", sqlDB).Health)

	api := engine.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", required, authHandler.Logout)
	authGroup.GET("/me", required, authHandler.Me)

	api.GET("/products", productHandler.ListPublic)
	api.GET("/products/:id", productHandler.GetPublic)
	api.GET("/categories", categoryHandler.List)

	cartGroup := api.Group("/cart", optional)
	cartGroup.GET("", cartHandler.Get)
	cartGroup.POST("", cartHandler.Add)
	cartGroup.DELETE("", cartHandler.Clear)
	cartGroup.PATCH("/:itemId", cartHandler.UpdateItem)
	cartGroup.DELETE("/:itemId", cartHandler.RemoveItem)

	api.POST("/orders", optional, orderHandler.Place)
	api.GET("/orders", required, orderHandler.ListMine)
	api.GET("/orders/:id", required, orderHandler.GetMine)

	api.GET("/addresses", required, addressHandler.List)
	api.POST("/addresses", required, addressHandler.Create)

	admin := api.Group("/admin", required, middleware.RequireAdmin())
	admin.GET("/products", productHandler.List)
	admin.POST("/products", productHandler.Create)
	admin.GET("/products/:id", productHandler.Get)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.POST("/products/:id/images/upload-url", productHandler.CreateImageUpload)
	admin.POST("/products/:id/images", productHandler.AddImage)
	admin.GET("/orders", adminOrderHandler.List)
	admin.GET("/orders/:id", adminOrderHandler.Get)
	admin.PATCH("/orders/:id", adminOrderHandler.UpdateStatus)
	admin.DELETE("/orders/:id", adminOrderHandler.Delete)
	admin.GET("/customers", customerHandler.List)
	admin.GET("/dashboard", dashboardHandler.Get)

	category, err := catalog.NewCategory("Electronics", "", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(category).Error)

	return &testEnv{db: db, engine: engine, jwt: jwtService, category: category}
}

// request is one call against the test API
type request struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		switch b := r.body.(type) {
		case string:
			body.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&body).Encode(b))
		}
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, w).Code
}

func (e *testEnv) seedProduct(t *testing.T, sku, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Product "+sku, sku, decimal.RequireFromString(price), e.category.ID)
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	require.NoError(t, persistence.NewGormProductRepository(e.db).Create(t.Context(), p))
	return p
}

// seedUser stores an account and returns an access token for it
func (e *testEnv) seedUser(t *testing.T, email string, role identity.Role) (*identity.User, string) {
	t.Helper()
	u, err := identity.NewUser("User "+email, email, "secret123", role)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(e.db).Create(t.Context(), u))
	pair, err := e.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	require.NoError(t, err)
	return u, pair.AccessToken
}

func (e *testEnv) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	p, err := persistence.NewGormProductRepository(e.db).FindByID(t.Context(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestHandleDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NotFound("Product not found"), http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid input", shared.InvalidInput("bad"), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"insufficient stock", shared.InsufficientStock("short"), http.StatusBadRequest, dto.ErrCodeInsufficientStock},
		{"unknown error is internal", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			var h BaseHandler
			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}

	t.Run("internal errors hide the cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		var h BaseHandler
		h.HandleDomainError(c, errors.New("pq: connection refused"))

		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestParseUUIDParam(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, request{method: http.MethodGet, path: "/api/products/not-a-uuid"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, dto.ErrCodeInvalidInput, body.Code)
	assert.Equal(t, "Invalid product ID format", body.Error)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("healthy", func(t *testing.T) {
		w := env.do(t, request{method: http.MethodGet, path: "/health"})
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Checks["database"])
	})

	t.Run("optional dependency down is degraded", func(t *testing.T) {
		sqlDB, err := env.db.DB()
		require.NoError(t, err)
		h := NewHealthHandler("test", sqlDB).WithDependency("redis", PingFunc(func(context.Context) error {
			return errors.New("redis down")
		}))
		router := gin.New()
		router.GET("/health", h.Health)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode[HealthResponse](t, w)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unhealthy", resp.Checks["redis"])
	})

	t.Run("database down is unhealthy", func(t *testing.T) {
		h := NewHealthHandler("test", PingFunc(func(context.Context) error {
			return errors.New("db down")
		}))
		router := gin.New()
		router.GET("/health", h.Health)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", decode[HealthResponse](t, w).Status)
	})
}
