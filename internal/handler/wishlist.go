package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rihanvyakoob07/authenflow-platform/internal/middleware"
	"github.com/rihanvyakoob07/authenflow-platform/internal/service"
)

// AddToWishlist saves :productId for the caller and returns the id list.
func (h *AuthHandler) AddToWishlist(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	pid, err := pathID(c, "productId", "product")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ids, err := h.Auth.AddToWishlist(ctx, uid, pid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wishlist": ids})
}

// RemoveFromWishlist drops :productId from the caller's wishlist.
func (h *AuthHandler) RemoveFromWishlist(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	pid, err := pathID(c, "productId", "product")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ids, err := h.Auth.RemoveFromWishlist(ctx, uid, pid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"wishlist": ids})
}

// Wishlist returns the caller's saved products, expanded.
func (h *AuthHandler) Wishlist(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.Auth.Wishlist(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, products)
}
