package services

import (
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"catalog/internal/apperrors"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// ProductService handles business logic related to products: uniqueness
// invariants, existence checks, and mapping to the transfer shapes.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// CreateProduct persists a new product after checking the name is free.
func (s *ProductService) CreateProduct(request models.ProductRequest) (models.ProductResponse, error) {
	log.Printf("Creating product with name: %s", request.Name)

	exists, err := s.repo.ExistsByName(request.Name)
	if err != nil {
		return models.ProductResponse{}, err
	}
	if exists {
		return models.ProductResponse{}, &apperrors.ProductAlreadyExistsError{Name: request.Name}
	}

	product := request.ToProduct()
	if err := s.repo.Save(&product); err != nil {
		return models.ProductResponse{}, s.translateSaveError(err, request.Name)
	}

	log.Printf("Product created with ID: %d", product.ID)
	return models.ProductResponseFrom(product), nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (models.ProductResponse, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return models.ProductResponse{}, err
	}
	if product == nil {
		return models.ProductResponse{}, &apperrors.ProductNotFoundError{ID: id}
	}
	return models.ProductResponseFrom(*product), nil
}

// GetAllProducts retrieves one sorted page of products.
func (s *ProductService) GetAllProducts(page, size int, sortBy, sortDirection string) (models.Page[models.ProductResponse], error) {
	result, err := s.repo.FindAll(page, size, sortBy, sortDirection)
	if err != nil {
		return models.Page[models.ProductResponse]{}, err
	}
	return models.MapPage(result, models.ProductResponseFrom), nil
}

// UpdateExistingProduct overwrites name, description and price of an
// existing product. Submitting the product's current name (in any case) is
// not a conflict; taking another product's name is.
func (s *ProductService) UpdateExistingProduct(id uint, request models.ProductRequest) (models.ProductResponse, error) {
	log.Printf("Updating product with ID: %d", id)

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return models.ProductResponse{}, err
	}
	if existing == nil {
		return models.ProductResponse{}, &apperrors.ProductNotFoundError{ID: id}
	}

	if !strings.EqualFold(existing.Name, request.Name) {
		exists, err := s.repo.ExistsByName(request.Name)
		if err != nil {
			return models.ProductResponse{}, err
		}
		if exists {
			return models.ProductResponse{}, &apperrors.ProductAlreadyExistsError{Name: request.Name}
		}
	}

	existing.Name = request.Name
	existing.Description = request.Description
	existing.Price = request.Price

	if err := s.repo.Save(existing); err != nil {
		return models.ProductResponse{}, s.translateSaveError(err, request.Name)
	}

	log.Printf("Successfully updated product with ID: %d", existing.ID)
	return models.ProductResponseFrom(*existing), nil
}

// DeleteProduct removes a product by its ID. The delete is permanent.
func (s *ProductService) DeleteProduct(id uint) error {
	log.Printf("Deleting product with ID: %d", id)

	existing, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &apperrors.ProductNotFoundError{ID: id}
	}
	return s.repo.Delete(id)
}

// SearchProducts returns products whose name contains the given substring,
// case-insensitively. An empty string matches every product.
func (s *ProductService) SearchProducts(name string) ([]models.ProductResponse, error) {
	products, err := s.repo.FindByNameContaining(name)
	if err != nil {
		return nil, err
	}
	return mapResponses(products), nil
}

// FindProductsInPriceRange returns products priced within [min, max].
// min > max yields an empty result, not an error.
func (s *ProductService) FindProductsInPriceRange(min, max float64) ([]models.ProductResponse, error) {
	products, err := s.repo.FindByPriceBetween(min, max)
	if err != nil {
		return nil, err
	}
	return mapResponses(products), nil
}

// FindProductsAbovePrice returns products priced strictly above the given
// value, cheapest first.
func (s *ProductService) FindProductsAbovePrice(price float64) ([]models.ProductResponse, error) {
	products, err := s.repo.FindAbovePrice(price)
	if err != nil {
		return nil, err
	}
	return mapResponses(products), nil
}

// SearchProductsByKeyword returns one page of products whose name or
// description contains the keyword, case-insensitively.
func (s *ProductService) SearchProductsByKeyword(keyword string, page, size int) (models.Page[models.ProductResponse], error) {
	result, err := s.repo.FindByKeyword(keyword, page, size)
	if err != nil {
		return models.Page[models.ProductResponse]{}, err
	}
	return models.MapPage(result, models.ProductResponseFrom), nil
}

// translateSaveError converts the store's uniqueness-violation error into
// the domain conflict. Two concurrent creates can both pass the existence
// check; the unique index is the backstop.
func (s *ProductService) translateSaveError(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperrors.ProductAlreadyExistsError{Name: name}
	}
	return err
}

func mapResponses(products []models.Product) []models.ProductResponse {
	responses := make([]models.ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, models.ProductResponseFrom(p))
	}
	return responses
}
