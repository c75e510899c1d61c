package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/logging"
	"github.com/crafthaus/shop-api/internal/models"
)

type CollectionInput struct {
	Title       string
	Description string
}

func (s *Service) CreateCollection(ctx context.Context, in CollectionInput, cover *ImageFile) (*models.Collection, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}

	col := &models.Collection{
		Title:       in.Title,
		Description: in.Description,
	}
	if cover != nil {
		if s.Blobs == nil {
			return nil, fmt.Errorf("%w: image storage is not configured", apperr.ErrUnavailable)
		}
		url, key, err := s.Blobs.Upload(ctx, cover.Body, cover.Filename, cover.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
		}
		col.ImageURL = url
		col.ImageKey = key
	}

	if err := s.Repo.CreateCollection(ctx, col); err != nil {
		if col.ImageKey != "" {
			if derr := s.Blobs.Delete(ctx, col.ImageKey); derr != nil {
				logging.FromContext(ctx).Error("blob delete failed", "key", col.ImageKey, "error", derr)
			}
		}
		return nil, err
	}
	return col, nil
}

// UpdateCollection applies a partial update. A new cover image replaces
// the stored one; the old blob is removed only after the save succeeds.
func (s *Service) UpdateCollection(ctx context.Context, id uint, in CollectionInput, cover *ImageFile) (*models.Collection, error) {
	col, err := s.Repo.FindCollection(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("collection %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	if in.Title != "" {
		col.Title = in.Title
	}
	if in.Description != "" {
		col.Description = in.Description
	}

	oldKey := ""
	if cover != nil {
		if s.Blobs == nil {
			return nil, fmt.Errorf("%w: image storage is not configured", apperr.ErrUnavailable)
		}
		url, key, err := s.Blobs.Upload(ctx, cover.Body, cover.Filename, cover.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
		}
		oldKey = col.ImageKey
		col.ImageURL = url
		col.ImageKey = key
	}

	if err := s.Repo.SaveCollection(ctx, col); err != nil {
		if cover != nil {
			if derr := s.Blobs.Delete(ctx, col.ImageKey); derr != nil {
				logging.FromContext(ctx).Error("blob delete failed", "key", col.ImageKey, "error", derr)
			}
		}
		return nil, err
	}
	if oldKey != "" {
		if err := s.Blobs.Delete(ctx, oldKey); err != nil {
			logging.FromContext(ctx).Error("blob delete failed", "key", oldKey, "error", err)
		}
	}
	return col, nil
}

func (s *Service) GetCollection(ctx context.Context, id uint) (*models.Collection, error) {
	col, err := s.Repo.FindCollection(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("collection %w", apperr.ErrNotFound)
	}
	return col, err
}

func (s *Service) ListCollections(ctx context.Context, offset, limit int) ([]models.Collection, int64, error) {
	return s.Repo.ListCollections(ctx, offset, limit)
}

func (s *Service) ProductsByCollection(ctx context.Context, collectionID uint, offset, limit int) ([]models.Product, int64, error) {
	if _, err := s.Repo.FindCollection(ctx, collectionID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, 0, fmt.Errorf("collection %w", apperr.ErrNotFound)
		}
		return nil, 0, err
	}
	return s.Repo.ListProductsByCollection(ctx, collectionID, offset, limit)
}

func (s *Service) DeleteCollection(ctx context.Context, id uint) error {
	col, err := s.Repo.FindCollection(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("collection %w", apperr.ErrNotFound)
		}
		return err
	}

	if err := s.Repo.DeleteCollection(ctx, id); err != nil {
		return err
	}
	if col.ImageKey != "" && s.Blobs != nil {
		if err := s.Blobs.Delete(ctx, col.ImageKey); err != nil {
			logging.FromContext(ctx).Error("blob delete failed", "key", col.ImageKey, "error", err)
		}
	}
	return nil
}
