package httpserver

import (
	"errors"
	"mime/multipart"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/service/catalog"
)

// bindProductForm reads the multipart product fields used on create, where
// the request carries image files alongside the product data.
func bindProductForm(c echo.Context) (catalog.ProductInput, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return catalog.ProductInput{}, errors.New("invalid price")
	}
	stock, err := strconv.Atoi(c.FormValue("stock"))
	if err != nil || stock < 0 {
		return catalog.ProductInput{}, errors.New("invalid stock")
	}
	collectionID, err := strconv.Atoi(c.FormValue("collection_id"))
	if err != nil {
		return catalog.ProductInput{}, errors.New("invalid collection_id")
	}
	featured, _ := strconv.ParseBool(c.FormValue("featured"))

	return catalog.ProductInput{
		Title:        c.FormValue("title"),
		SKU:          c.FormValue("sku"),
		Description:  c.FormValue("description"),
		Price:        price,
		Stock:        uint(stock),
		DeliveryTime: c.FormValue("delivery_time"),
		Featured:     featured,
		CollectionID: uint(collectionID),
	}, nil
}

func formImages(c echo.Context, field string) ([]catalog.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.New("invalid form data")
	}

	files := form.File[field]
	out := make([]catalog.ImageFile, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			closeImages(out)
			return nil, errors.New("cannot read uploaded file")
		}
		out = append(out, catalog.ImageFile{
			Body:        f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return out, nil
}

func closeImages(images []catalog.ImageFile) {
	for _, img := range images {
		if closer, ok := img.Body.(multipart.File); ok {
			closer.Close()
		}
	}
}
