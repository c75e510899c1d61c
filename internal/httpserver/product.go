package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/service/catalog"
	"github.com/crafthaus/shop-api/internal/util"
)

type ProductHTTP struct {
	Svc *catalog.Service
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.GetProduct(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Svc.ListProducts(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": util.PageMeta(page, limit, total, offset),
	})
}

func (h *ProductHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, products, err := h.Svc.SearchProducts(c.Request().Context(), q, from, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	in, err := bindProductForm(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	images, err := formImages(c, "images")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer closeImages(images)

	product, err := h.Svc.CreateProduct(c.Request().Context(), in, images)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Title        string  `json:"title"`
		SKU          string  `json:"sku"`
		Description  string  `json:"description"`
		Price        float64 `json:"price"`
		Stock        *uint   `json:"stock"`
		DeliveryTime string  `json:"delivery_time"`
		Featured     *bool   `json:"featured"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(c.Request().Context(), uint(id), catalog.ProductUpdate{
		Title:        req.Title,
		SKU:          req.SKU,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		DeliveryTime: req.DeliveryTime,
		Featured:     req.Featured,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := h.Svc.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
