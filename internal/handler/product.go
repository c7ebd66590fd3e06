package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/rihanvyakoob07/authenflow-platform/internal/middleware"
	"github.com/rihanvyakoob07/authenflow-platform/internal/service"
)

// ProductHandler serves the catalog, reviews, clicks and analytics.
type ProductHandler struct {
	Catalog *service.CatalogService
	Log     logrus.FieldLogger
}

func NewProductHandler(catalog *service.CatalogService, log logrus.FieldLogger) *ProductHandler {
	if catalog == nil {
		panic("nil service passed to NewProductHandler")
	}
	return &ProductHandler{Catalog: catalog, Log: log}
}

// List returns every product.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.Catalog.List(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Create (admin only).
func (h *ProductHandler) Create(c echo.Context) error {
	var req service.ProductInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.Create(ctx, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update (admin only); absent fields keep their stored values.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	var req service.ProductPatch
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.Update(ctx, id, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete (admin only).
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Catalog.Delete(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product removed"})
}

// AddReview appends the caller's review and returns the updated product.
func (h *ProductHandler) AddReview(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	var req service.ReviewInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.AddReview(ctx, id, uid, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// SeedReviews bulk-appends reviews (admin only, and only when seeding is
// enabled).
func (h *ProductHandler) SeedReviews(c echo.Context) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	var req service.SeedReviewsInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Catalog.SeedReviews(ctx, id, req)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Click records one click on the product.
func (h *ProductHandler) Click(c echo.Context) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Catalog.RecordClick(ctx, id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Summary returns user, product and click totals.
func (h *ProductHandler) Summary(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	s, err := h.Catalog.Summary(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}
