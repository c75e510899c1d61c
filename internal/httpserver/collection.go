package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/service/catalog"
	"github.com/crafthaus/shop-api/internal/util"
)

type CollectionHTTP struct {
	Svc *catalog.Service
}

func (h *CollectionHTTP) GetCollections(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Svc.ListCollections(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": util.PageMeta(page, limit, total, offset),
	})
}

func (h *CollectionHTTP) GetCollection(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}

	col, err := h.Svc.GetCollection(c.Request().Context(), uint(id))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, col)
}

func (h *CollectionHTTP) GetCollectionProducts(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Svc.ProductsByCollection(c.Request().Context(), uint(id), offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": util.PageMeta(page, limit, total, offset),
	})
}

func (h *CollectionHTTP) CreateCollection(c echo.Context) error {
	in := catalog.CollectionInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	var cover *catalog.ImageFile
	images, err := formImages(c, "image")
	if err == nil && len(images) > 0 {
		cover = &images[0]
		defer closeImages(images)
	}

	col, err := h.Svc.CreateCollection(c.Request().Context(), in, cover)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, col)
}

func (h *CollectionHTTP) UpdateCollection(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}

	in := catalog.CollectionInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}

	var cover *catalog.ImageFile
	images, err := formImages(c, "image")
	if err == nil && len(images) > 0 {
		cover = &images[0]
		defer closeImages(images)
	}

	col, err := h.Svc.UpdateCollection(c.Request().Context(), uint(id), in, cover)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, col)
}

func (h *CollectionHTTP) DeleteCollection(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid collection id")
	}
	if err := h.Svc.DeleteCollection(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
