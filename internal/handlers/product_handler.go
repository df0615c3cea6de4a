package handlers

import (
	"errors"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
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

// RegisterRoutes registers the product routes with the Fiber router. guards
// run only in front of the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products", guards...)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/upload", h.HandleUploadProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProduct returns one product with a link to the collection.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	view, found, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return serverError(c, "Could not retrieve product", err)
	}
	if !found {
		return noBody(c, fiber.StatusNotFound)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// HandleGetProducts returns every product; an empty catalog is a 404.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	views, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return serverError(c, "Could not retrieve products", err)
	}
	if len(views) == 0 {
		return noBody(c, fiber.StatusNotFound)
	}
	return c.Status(fiber.StatusOK).JSON(views)
}

// HandleCreateProduct creates a product from a JSON body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.ProductRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	product, err := h.service.CreateProduct(c.UserContext(), req.Input())
	if err != nil {
		return serverError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces all attributes of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	var req models.ProductRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	product, found, err := h.service.UpdateProduct(c.UserContext(), id, req.Input())
	if err != nil {
		return serverError(c, "Could not update product", err)
	}
	if !found {
		return noBody(c, fiber.StatusNotFound)
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	deleted, err := h.service.DeleteProduct(c.UserContext(), id)
	if err != nil {
		return serverError(c, "Could not delete product", err)
	}
	if !deleted {
		return noBody(c, fiber.StatusNotFound)
	}
	return noBody(c, fiber.StatusNoContent)
}

// HandleUploadProducts imports the CSV sent in the multipart field "file".
func (h *ProductHandler) HandleUploadProducts(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file provided",
			"error":   err.Error(),
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return serverError(c, "Could not read uploaded file", err)
	}
	defer file.Close()

	imported, err := h.service.ImportCSV(c.UserContext(), file)
	if err != nil {
		var importErr *services.ImportError
		if errors.As(err, &importErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message":  "Invalid CSV file",
				"error":    importErr.Error(),
				"row":      importErr.Row,
				"column":   importErr.Column,
				"imported": imported,
			})
		}
		return serverError(c, "Could not import products", err)
	}
	return noBody(c, fiber.StatusOK)
}

// productID returns the :id path parameter in canonical UUID form, so
// "D79C221E-..." and "d79c221e..." both find the stored product.
func productID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Product ID must be a UUID",
	})
}

func serverError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// noBody answers with status and an empty body. SendStatus would fill in
// the status text.
func noBody(c *fiber.Ctx, status int) error {
	return c.Status(status).Send(nil)
}
