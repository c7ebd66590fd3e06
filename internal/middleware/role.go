package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
	"github.com/rihanvyakoob07/authenflow-platform/internal/repository"
)

// UserLookup loads the stored identity for an id.  *repository.UserRepo
// satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  The role is read
// from the credential store on every request rather than from the token,
// so a demotion takes effect immediately.  It must run after JWTAuth.
func RequireRole(users UserLookup, log logrus.FieldLogger, roles ...model.Role) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := UserID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
			}
			u, err := users.GetByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// The token outlived its account.
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
				}
				log.WithError(err).WithField("user_id", id).Error("role lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			}
			if !allowed[u.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied. Admin privileges required."})
			}
			c.Set(roleKey, u.Role)
			return next(c)
		}
	}
}
