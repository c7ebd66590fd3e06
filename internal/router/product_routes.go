package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/rihanvyakoob07/authenflow-platform/internal/handler" // product handlers
)

// RegisterProducts registers the catalog routes under /api/products.
// Browsing and click tracking are public, reviews need a token, and
// mutations need the admin role.
func RegisterProducts(api *echo.Group, p *handler.ProductHandler, gate Gate) {
	g := api.Group("/products")

	// ---- Public ----
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.POST("/:id/click", p.Click)

	// ---- Authenticated ----
	g.POST("/:id/reviews", p.AddReview, gate.Authenticated())

	// ---- Admin ----
	admin := gate.Admin()
	g.POST("", p.Create, admin...)
	g.PUT("/:id", p.Update, admin...)
	g.DELETE("/:id", p.Delete, admin...)
	g.POST("/:id/fake-reviews", p.SeedReviews, admin...)
}

// RegisterAnalytics registers GET /api/analytics/summary.
func RegisterAnalytics(api *echo.Group, p *handler.ProductHandler) {
	api.GET("/analytics/summary", p.Summary)
}
