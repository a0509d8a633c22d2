package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"catalog/internal/apperrors"
)

// ErrorResponse is the payload for domain and transport errors.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidationErrorResponse extends ErrorResponse with per-field messages.
type ValidationErrorResponse struct {
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

// ErrorHandler is the central error mapper: every error returned from a
// handler or the service chain passes through here exactly once and is
// translated into a status code and structured payload.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var notFound *apperrors.ProductNotFoundError
	var alreadyExists *apperrors.ProductAlreadyExistsError
	var validationErr *apperrors.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &notFound):
		log.Printf("Product not found: %v", notFound)
		return respondError(c, fiber.StatusNotFound, "Product Not Found", notFound.Error())

	case errors.As(err, &alreadyExists):
		log.Printf("Product already exists: %v", alreadyExists)
		return respondError(c, fiber.StatusConflict, "Product Already Exists", alreadyExists.Error())

	case errors.As(err, &validationErr):
		log.Printf("Validation error: %v", validationErr.Fields)
		return c.Status(fiber.StatusBadRequest).JSON(ValidationErrorResponse{
			Status:           fiber.StatusBadRequest,
			Error:            "Validation Failed",
			Message:          "Invalid input data",
			Timestamp:        time.Now(),
			ValidationErrors: validationErr.Fields,
		})

	case errors.As(err, &fiberErr):
		return respondError(c, fiberErr.Code, utils.StatusMessage(fiberErr.Code), fiberErr.Message)

	default:
		log.Printf("Unhandled error: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred")
	}
}

func respondError(c *fiber.Ctx, status int, title, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Status:    status,
		Error:     title,
		Message:   message,
		Timestamp: time.Now(),
	})
}
