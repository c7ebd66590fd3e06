package middleware

// identity.go holds the context keys set by the access gate and helpers to
// read them back in handlers.

import (
	"github.com/labstack/echo/v4"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// UserID returns the authenticated user id stored by JWTAuth.  ok is false
// when the request did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// Role returns the role resolved by RequireRole, if any.
func Role(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(roleKey).(model.Role)
	return r, ok
}
