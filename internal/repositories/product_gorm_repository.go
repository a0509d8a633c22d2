package repositories

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"catalog/internal/models"
)

// sortColumns whitelists the sortable fields and maps the API names to the
// underlying column names. Unknown fields fall back to id.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindByID retrieves a single product by its ID. Absence is reported as
// (nil, nil), not as an error.
func (r *GORMProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by ID %d: %w", id, err)
	}
	return &product, nil
}

// FindAll retrieves one sorted page of products with total-count metadata.
func (r *GORMProductRepository) FindAll(page, size int, sortBy, sortDirection string) (models.Page[models.Product], error) {
	page, size = normalizePage(page, size)

	result := models.Page[models.Product]{
		Content: []models.Product{},
		Page:    page,
		Size:    size,
	}

	if err := r.db.Model(&models.Product{}).Count(&result.TotalElements).Error; err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		column = "id"
	}
	direction := "asc"
	if strings.EqualFold(sortDirection, "desc") {
		direction = "desc"
	}

	err := r.db.
		Order(column + " " + direction).
		Offset(page * size).
		Limit(size).
		Find(&result.Content).Error
	if err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}

	result.TotalPages = totalPages(result.TotalElements, size)
	return result, nil
}

// ExistsByName reports whether a product with this name exists,
// case-insensitively. LOWER() keeps the semantics identical on
// PostgreSQL and SQLite.
func (r *GORMProductRepository) ExistsByName(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check product name %q: %w", name, err)
	}
	return count > 0, nil
}

// FindByNameContaining retrieves products whose name contains the given
// substring, case-insensitively.
func (r *GORMProductRepository) FindByNameContaining(name string) ([]models.Product, error) {
	products := []models.Product{}
	pattern := "%" + strings.ToLower(name) + "%"
	err := r.db.
		Where("LOWER(name) LIKE ?", pattern).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name %q: %w", name, err)
	}
	return products, nil
}

// FindByPriceBetween retrieves products priced within [min, max].
func (r *GORMProductRepository) FindByPriceBetween(min, max float64) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.
		Where("price BETWEEN ? AND ?", min, max).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products in price range: %w", err)
	}
	return products, nil
}

// FindAbovePrice retrieves products priced strictly above the given value,
// cheapest first.
func (r *GORMProductRepository) FindAbovePrice(price float64) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.
		Where("price > ?", price).
		Order("price asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products above price: %w", err)
	}
	return products, nil
}

// FindByKeyword retrieves one page of products whose name or description
// contains the keyword, case-insensitively.
func (r *GORMProductRepository) FindByKeyword(keyword string, page, size int) (models.Page[models.Product], error) {
	page, size = normalizePage(page, size)

	result := models.Page[models.Product]{
		Content: []models.Product{},
		Page:    page,
		Size:    size,
	}

	pattern := "%" + strings.ToLower(keyword) + "%"
	match := func() *gorm.DB {
		return r.db.Model(&models.Product{}).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if err := match().Count(&result.TotalElements).Error; err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to count keyword matches: %w", err)
	}

	err := match().
		Order("id asc").
		Offset(page * size).
		Limit(size).
		Find(&result.Content).Error
	if err != nil {
		return models.Page[models.Product]{}, fmt.Errorf("failed to search products by keyword %q: %w", keyword, err)
	}

	result.TotalPages = totalPages(result.TotalElements, size)
	return result, nil
}

// Save inserts the product when its ID is zero, otherwise overwrites the
// existing row. GORM refreshes UpdatedAt on the way in.
func (r *GORMProductRepository) Save(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		// Unique-index violations surface as gorm.ErrDuplicatedKey
		// (TranslateError is enabled); %w keeps them inspectable.
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// Delete removes a product by its ID. An absent row is a no-op.
func (r *GORMProductRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Product{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
