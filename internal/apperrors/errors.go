// Package apperrors defines the domain error types raised by the catalog
// service and inspected by the HTTP error handler.
package apperrors

import "fmt"

// ProductNotFoundError is returned when no product exists for the given ID.
type ProductNotFoundError struct {
	ID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Product not found with ID: %d", e.ID)
}

// ProductAlreadyExistsError is returned when a create or rename would
// collide with an existing product name (case-insensitive).
type ProductAlreadyExistsError struct {
	Name string
}

func (e *ProductAlreadyExistsError) Error() string {
	return fmt.Sprintf("Product already exists with name: %s", e.Name)
}

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Invalid input data"
}
