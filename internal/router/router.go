package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/handler"    // handlers that implement each endpoint
	"github.com/rihanvyakoob07/authenflow-platform/internal/middleware" // JWT authentication and role enforcement
	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
)

// Gate bundles the two access-gate stages so route files can attach
// them without repeating their dependencies.
type Gate struct {
	Tokens middleware.TokenVerifier
	Users  middleware.UserLookup
	Log    logrus.FieldLogger
}

// Authenticated requires a valid bearer token.
func (g Gate) Authenticated() echo.MiddlewareFunc {
	return middleware.JWTAuth(g.Tokens)
}

// Admin requires a valid bearer token whose identity has the admin role.
func (g Gate) Admin() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(g.Tokens),
		middleware.RequireRole(g.Users, g.Log, model.RoleAdmin),
	}
}

// RegisterRoutes registers routes that do not belong to an API group.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	// GET /healthz lets load balancers verify the service and its database.
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the authentication, profile and wishlist routes
// under /api/auth.  Register and login are public; everything else needs
// a valid token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, gate Gate) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Protected endpoints run JWTAuth first.
	p := g.Group("", gate.Authenticated())
	p.GET("/me", a.Me)
	p.PUT("/profile", a.UpdateProfile)
	p.GET("/wishlist", a.Wishlist)
	p.POST("/wishlist/:productId", a.AddToWishlist)
	p.DELETE("/wishlist/:productId", a.RemoveFromWishlist)
}
