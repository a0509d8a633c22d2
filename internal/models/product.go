package models

import "time"

// Product represents a product row in the catalog.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:100"`
	Price       float64   `json:"price" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductRequest is the payload accepted on create and update. IDs and
// timestamps are never accepted as input.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=50"`
	Description string  `json:"description" validate:"omitempty,max=100"`
	Price       float64 `json:"price" validate:"required,gte=0.01"`
}

// ToProduct builds a new, unsaved entity from the request.
func (r ProductRequest) ToProduct() Product {
	return Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

// ProductResponse is the outward shape of a product.
type ProductResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductResponseFrom maps a persisted product to its response shape.
func ProductResponseFrom(p Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Page is a bounded slice of a larger ordered result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// MapPage converts the content of a page while keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{
		Content:       make([]U, 0, len(p.Content)),
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
	for _, item := range p.Content {
		out.Content = append(out.Content, fn(item))
	}
	return out
}
