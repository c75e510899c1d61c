package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
	"github.com/crafthaus/shop-api/internal/service/cart"
)

type CartHTTP struct {
	Svc *cart.Service
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	id := mwauth.Identity(c)

	result, err := h.Svc.GetCart(c.Request().Context(), id.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	id := mwauth.Identity(c)

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	result, err := h.Svc.AddItem(c.Request().Context(), id.ID, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	id := mwauth.Identity(c)

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.UpdateItem(c.Request().Context(), id.ID, uint(productID), req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	id := mwauth.Identity(c)

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	result, err := h.Svc.RemoveItem(c.Request().Context(), id.ID, uint(productID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	id := mwauth.Identity(c)

	result, err := h.Svc.ClearCart(c.Request().Context(), id.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
