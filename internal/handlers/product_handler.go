package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/models"
	"catalog/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// newValidator configures the request validator: field names are reported
// from JSON tags and notblank rejects whitespace-only strings.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	// validator has no built-in blank check; required alone lets "   " through.
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return validate
}

// RegisterRoutes registers the product routes with the Fiber app. Static
// paths go first so /search and /price-range are not captured by /:id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleGetAllProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/search/keyword", h.HandleSearchByKeyword)
	productRoutes.Get("/price-range", h.HandlePriceRange)
	productRoutes.Get("/above-price", h.HandleAbovePrice)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	request, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	response, err := h.service.CreateProduct(request)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	response, err := h.service.GetProductByID(id)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// HandleGetAllProducts retrieves a sorted page of products.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)
	sortBy := c.Query("sortBy", "id")
	sortDirection := c.Query("sortDirection", "asc")

	result, err := h.service.GetAllProducts(page, size, sortBy, sortDirection)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleUpdateProduct replaces name, description and price of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	request, err := h.parseRequest(c)
	if err != nil {
		return err
	}

	response, err := h.service.UpdateExistingProduct(id, request)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteProduct(id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearchProducts searches products by name substring. A missing or
// empty name matches every product.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.Query("name"))
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleSearchByKeyword searches name and description, paginated.
func (h *ProductHandler) HandleSearchByKeyword(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)

	result, err := h.service.SearchProductsByKeyword(keyword, page, size)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandlePriceRange lists products priced within [minPrice, maxPrice].
func (h *ProductHandler) HandlePriceRange(c *fiber.Ctx) error {
	minPrice, err := requiredFloatQuery(c, "minPrice")
	if err != nil {
		return err
	}
	maxPrice, err := requiredFloatQuery(c, "maxPrice")
	if err != nil {
		return err
	}

	products, err := h.service.FindProductsInPriceRange(minPrice, maxPrice)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleAbovePrice lists products priced strictly above the given value.
func (h *ProductHandler) HandleAbovePrice(c *fiber.Ctx) error {
	price, err := requiredFloatQuery(c, "price")
	if err != nil {
		return err
	}

	products, err := h.service.FindProductsAbovePrice(price)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// parseRequest decodes and validates the product request body. Validation
// runs here, before any service call, so an invalid body never causes a
// partial mutation.
func (h *ProductHandler) parseRequest(c *fiber.Ctx) (models.ProductRequest, error) {
	var request models.ProductRequest
	if err := c.BodyParser(&request); err != nil {
		return models.ProductRequest{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(request); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			return models.ProductRequest{}, &apperrors.ValidationError{Fields: validationMessages(fieldErrors)}
		}
		return models.ProductRequest{}, err
	}
	return request, nil
}

func validationMessages(fieldErrors validator.ValidationErrors) map[string]string {
	messages := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required", "notblank":
			messages[fe.Field()] = fe.Field() + " is required"
		case "max":
			messages[fe.Field()] = fe.Field() + " must not exceed " + fe.Param() + " characters"
		case "gte":
			messages[fe.Field()] = fe.Field() + " must be greater than or equal to " + fe.Param()
		default:
			messages[fe.Field()] = fe.Field() + " is invalid"
		}
	}
	return messages
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Product ID must be a positive integer")
	}
	return uint(id), nil
}

func requiredFloatQuery(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" query parameter is required")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a decimal number")
	}
	return value, nil
}
