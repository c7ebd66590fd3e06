package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
)

// TokenVerifier resolves a raw bearer token to the user id it was issued
// for.  *utils.TokenService satisfies it.
type TokenVerifier interface {
	Verify(raw string) (uint64, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's user id into the request context under "user_id".
// Requests without a usable token are answered with 401 and never reach
// the wrapped handler.
func JWTAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header looks like "Bearer <jwt>"; the scheme is
			// matched case-insensitively.
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token, authorization denied"})
			}

			// Signature, algorithm and expiry are all checked by Verify.
			id, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is not valid"})
			}

			c.Set(userIDKey, id)
			return next(c)
		}
	}
}
