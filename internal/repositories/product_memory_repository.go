package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It backs the service when no database is configured
// and doubles as a reference for the query-layer matching semantics.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// FindByID returns a product by its ID, or (nil, nil) when absent.
func (r *MemoryProductRepository) FindByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// FindAll returns one sorted page of products.
func (r *MemoryProductRepository) FindAll(page, size int, sortBy, sortDirection string) (models.Page[models.Product], error) {
	page, size = normalizePage(page, size)

	all := r.snapshot()
	sortProducts(all, sortBy, sortDirection)

	return pageOf(all, page, size), nil
}

// ExistsByName reports whether any product has this name, case-insensitively.
func (r *MemoryProductRepository) ExistsByName(name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// FindByNameContaining returns products whose name contains the substring,
// case-insensitively. The empty string matches everything.
func (r *MemoryProductRepository) FindByNameContaining(name string) ([]models.Product, error) {
	needle := strings.ToLower(name)

	matches := []models.Product{}
	for _, p := range r.snapshot() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// FindByPriceBetween returns products with min <= price <= max.
func (r *MemoryProductRepository) FindByPriceBetween(min, max float64) ([]models.Product, error) {
	matches := []models.Product{}
	for _, p := range r.snapshot() {
		if p.Price >= min && p.Price <= max {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// FindAbovePrice returns products priced strictly above the given value,
// cheapest first.
func (r *MemoryProductRepository) FindAbovePrice(price float64) ([]models.Product, error) {
	matches := []models.Product{}
	for _, p := range r.snapshot() {
		if p.Price > price {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	return matches, nil
}

// FindByKeyword returns one page of products whose name or description
// contains the keyword, case-insensitively.
func (r *MemoryProductRepository) FindByKeyword(keyword string, page, size int) (models.Page[models.Product], error) {
	page, size = normalizePage(page, size)
	needle := strings.ToLower(keyword)

	matches := []models.Product{}
	for _, p := range r.snapshot() {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	return pageOf(matches, page, size), nil
}

// Save inserts the product when its ID is zero, otherwise overwrites the
// existing row. Exact-name collisions report gorm.ErrDuplicatedKey to match
// the unique index in the relational store.
func (r *MemoryProductRepository) Save(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ID != product.ID && p.Name == product.Name {
			return gorm.ErrDuplicatedKey
		}
	}

	now := time.Now()
	if product.ID == 0 {
		product.ID = r.nextID
		r.nextID++
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID. An absent row is a no-op.
func (r *MemoryProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) snapshot() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	return all
}

func sortProducts(products []models.Product, sortBy, sortDirection string) {
	less := func(a, b models.Product) bool { return a.ID < b.ID }
	switch sortBy {
	case "name":
		less = func(a, b models.Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b models.Product) bool { return a.Price < b.Price }
	case "createdAt":
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updatedAt":
		less = func(a, b models.Product) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}

	desc := strings.EqualFold(sortDirection, "desc")
	sort.Slice(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}

func pageOf(all []models.Product, page, size int) models.Page[models.Product] {
	result := models.Page[models.Product]{
		Content:       []models.Product{},
		Page:          page,
		Size:          size,
		TotalElements: int64(len(all)),
		TotalPages:    totalPages(int64(len(all)), size),
	}

	start := page * size
	if start < len(all) {
		end := start + size
		if end > len(all) {
			end = len(all)
		}
		result.Content = append(result.Content, all[start:end]...)
	}
	return result
}
