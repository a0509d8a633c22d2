package repositories

import (
	"catalog/internal/models"
)

const (
	// DefaultPageSize is used when a caller passes a non-positive size.
	DefaultPageSize = 10
	// MaxPageSize caps a single page regardless of what the caller asks for.
	MaxPageSize = 100
)

// ProductRepository defines the query layer over the persisted product set.
// Matching semantics (case-insensitivity, inclusive bounds) are part of the
// contract and must hold for every implementation.
type ProductRepository interface {
	// FindByID returns (nil, nil) when no row matches; absence is not an
	// error at this layer.
	FindByID(id uint) (*models.Product, error)

	// FindAll returns one page of products. page is zero-based; sortBy is
	// one of id, name, price, createdAt, updatedAt (unknown values fall
	// back to id); sortDirection is asc or desc (default asc).
	FindAll(page, size int, sortBy, sortDirection string) (models.Page[models.Product], error)

	// ExistsByName reports whether any product has this name,
	// compared case-insensitively.
	ExistsByName(name string) (bool, error)

	// FindByNameContaining returns products whose name contains the given
	// substring, case-insensitively. The empty string matches everything.
	FindByNameContaining(name string) ([]models.Product, error)

	// FindByPriceBetween returns products with min <= price <= max.
	FindByPriceBetween(min, max float64) ([]models.Product, error)

	// FindAbovePrice returns products priced strictly above the given
	// value, ascending by price.
	FindAbovePrice(price float64) ([]models.Product, error)

	// FindByKeyword returns one page of products whose name or description
	// contains the keyword, case-insensitively.
	FindByKeyword(keyword string, page, size int) (models.Page[models.Product], error)

	// Save inserts the product when its ID is zero, otherwise overwrites
	// the existing row. Timestamps are refreshed on the way in.
	Save(product *models.Product) error

	// Delete removes the row with the given ID. Deleting an absent row is
	// a no-op; existence checks belong to the caller.
	Delete(id uint) error
}

func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func totalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return int(pages)
}
