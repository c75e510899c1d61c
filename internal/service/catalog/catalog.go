// Package catalog manages products and collections: validation, image
// upload to the blob store, persistence and keeping the search index in
// step. The cart engine reads products through the repo directly; this
// package is the write path.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/events"
	"github.com/crafthaus/shop-api/internal/logging"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/storage"
)

// SearchIndex mirrors the product documents into the search backend.
type SearchIndex interface {
	IndexProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type Service struct {
	Repo   *repo.GormRepo
	Blobs  storage.BlobStore
	Search SearchIndex
	Events events.Publisher
}

type ProductInput struct {
	Title        string
	SKU          string
	Description  string
	Price        float64
	Stock        uint
	DeliveryTime string
	Featured     bool
	CollectionID uint
}

// ProductUpdate carries a partial update. Nil or zero fields keep the
// stored value; Stock and Featured are pointers so an omitted field is
// distinguishable from an explicit zero.
type ProductUpdate struct {
	Title        string
	SKU          string
	Description  string
	Price        float64
	Stock        *uint
	DeliveryTime string
	Featured     *bool
}

type ImageFile struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput, images []ImageFile) (*models.Product, error) {
	if in.Title == "" || in.Description == "" || in.Price <= 0 || in.CollectionID == 0 {
		return nil, fmt.Errorf("title, description, price and collection are required: %w", apperr.ErrValidation)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("at least one image is required: %w", apperr.ErrValidation)
	}

	if _, err := s.Repo.FindCollection(ctx, in.CollectionID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("collection %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	uploaded, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:        in.Title,
		SKU:          in.SKU,
		Description:  in.Description,
		Price:        in.Price,
		Stock:        in.Stock,
		DeliveryTime: in.DeliveryTime,
		Featured:     in.Featured,
		CollectionID: in.CollectionID,
		Images:       uploaded,
	}
	if err := s.Repo.CreateProduct(ctx, product); err != nil {
		s.deleteBlobs(ctx, uploaded)
		return nil, err
	}

	s.index(ctx, product)
	s.publish(ctx, product.ID, map[string]any{
		"type":      "product_created",
		"productID": product.ID,
		"title":     product.Title,
	})
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductUpdate) (*models.Product, error) {
	product, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("product %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	if in.Title != "" {
		product.Title = in.Title
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.SKU != "" {
		product.SKU = in.SKU
	}
	if in.Price > 0 {
		product.Price = in.Price
	}
	if in.DeliveryTime != "" {
		product.DeliveryTime = in.DeliveryTime
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	s.index(ctx, product)
	s.publish(ctx, product.ID, map[string]any{
		"type":      "product_updated",
		"productID": product.ID,
		"title":     product.Title,
	})
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("product %w", apperr.ErrNotFound)
		}
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.deleteBlobs(ctx, product.Images)
	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search index delete failed", "product_id", id, "error", err)
		}
	}
	s.publish(ctx, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.FindProduct(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("product %w", apperr.ErrNotFound)
	}
	return product, err
}

func (s *Service) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	return s.Repo.ListProducts(ctx, offset, limit)
}

func (s *Service) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if query == "" {
		return 0, nil, fmt.Errorf("query is required: %w", apperr.ErrValidation)
	}
	if s.Search == nil {
		return 0, nil, fmt.Errorf("search backend not configured: %w", apperr.ErrUnavailable)
	}
	return s.Search.Search(ctx, query, from, size)
}

func (s *Service) uploadImages(ctx context.Context, images []ImageFile) ([]models.ProductImage, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if s.Blobs == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", apperr.ErrUnavailable)
	}
	out := make([]models.ProductImage, 0, len(images))
	for _, img := range images {
		url, key, err := s.Blobs.Upload(ctx, img.Body, img.Filename, img.ContentType)
		if err != nil {
			s.deleteBlobs(ctx, out)
			return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
		}
		out = append(out, models.ProductImage{URL: url, Key: key})
	}
	return out, nil
}

func (s *Service) deleteBlobs(ctx context.Context, images []models.ProductImage) {
	if s.Blobs == nil {
		return
	}
	for _, img := range images {
		if err := s.Blobs.Delete(ctx, img.Key); err != nil {
			logging.FromContext(ctx).Error("blob delete failed", "key", img.Key, "error", err)
		}
	}
}

func (s *Service) index(ctx context.Context, product *models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, product); err != nil {
		logging.FromContext(ctx).Error("search index failed", "product_id", product.ID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, productID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, events.TopicProductEvents, fmt.Sprint(productID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicProductEvents, "error", err)
	}
}
