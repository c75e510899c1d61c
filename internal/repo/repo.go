// Package repo is the persistence layer. Every method maps
// gorm.ErrRecordNotFound to apperr.ErrNotFound and any other store failure
// to apperr.ErrUnavailable, so the services never see driver errors.
package repo

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/crafthaus/shop-api/internal/apperr"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return fmt.Errorf("%w: %v", apperr.ErrUnavailable, err)
}
