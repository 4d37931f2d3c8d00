package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers bundles the storefront HTTP handlers
type Handlers struct {
	Auth       *handler.AuthHandler
	Product    *handler.ProductHandler
	Category   *handler.CategoryHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	AdminOrder *handler.AdminOrderHandler
	Address    *handler.AddressHandler
	Customer   *handler.CustomerHandler
	Dashboard  *handler.DashboardHandler
}

// Guards holds the access control chains applied per route group.
// AuthRateLimit is optional.
type Guards struct {
	OptionalAuth  []gin.HandlerFunc
	RequireAuth   []gin.HandlerFunc
	RequireAdmin  []gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
}

// with returns guard followed by h without aliasing guard's backing array
func with(guard []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(guard)+1)
	chain = append(chain, guard...)
	return append(chain, h)
}

// StorefrontGroups builds the route groups of the storefront API
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	auth := NewDomainGroup("auth", "/auth")
	if g.AuthRateLimit != nil {
		auth.Use(g.AuthRateLimit)
	}
	auth.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", with(g.RequireAuth, h.Auth.Logout)...).
		GET("/me", with(g.RequireAuth, h.Auth.Me)...)

	products := NewDomainGroup("products", "/products").
		GET("", h.Product.ListPublic).
		GET("/:id", h.Product.GetPublic)

	categories := NewDomainGroup("categories", "/categories").
		GET("", h.Category.List)

	cart := NewDomainGroup("cart", "/cart").
		Use(g.OptionalAuth...).
		GET("", h.Cart.Get).
		POST("", h.Cart.Add).
		DELETE("", h.Cart.Clear).
		PATCH("/:itemId", h.Cart.UpdateItem).
		DELETE("/:itemId", h.Cart.RemoveItem)

	orders := NewDomainGroup("orders", "/orders").
		POST("", with(g.OptionalAuth, h.Order.Place)...).
		GET("", with(g.RequireAuth, h.Order.ListMine)...).
		GET("/:id", with(g.RequireAuth, h.Order.GetMine)...)

	addresses := NewDomainGroup("addresses", "/addresses").
		Use(g.RequireAuth...).
		GET("", h.Address.List).
		POST("", h.Address.Create)

	admin := NewDomainGroup("admin", "/admin").Use(g.RequireAdmin...)
	admin.Group("admin-products", "/products").
		GET("", h.Product.List).
		POST("", h.Product.Create).
		GET("/:id", h.Product.Get).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete).
		POST("/:id/images/upload-url", h.Product.CreateImageUpload).
		POST("/:id/images", h.Product.AddImage)
	admin.Group("admin-orders", "/orders").
		GET("", h.AdminOrder.List).
		GET("/:id", h.AdminOrder.Get).
		PATCH("/:id", h.AdminOrder.UpdateStatus).
		DELETE("/:id", h.AdminOrder.Delete)
	admin.Group("admin-customers", "/customers").
		GET("", h.Customer.List)
	admin.Group("admin-dashboard", "/dashboard").
		GET("", h.Dashboard.Get)

	return []*DomainGroup{auth, products, categories, cart, orders, addresses, admin}
}

// RegisterStorefront registers every storefront route group
func (r *Router) RegisterStorefront(h Handlers, g Guards) *Router {
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	return r
}
