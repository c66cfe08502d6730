package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"grosir/internal/apperror"
	"grosir/internal/middleware"
	"grosir/internal/services"
	"grosir/pkg/result"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service *services.ProductService
	out     result.Writer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, out result.Writer) *ProductHandler {
	return &ProductHandler{
		service: service,
		out:     out,
	}
}

// RegisterRoutes registers the product routes. authRequired guards the
// routes that need a caller identity; the rest are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", authRequired, h.HandleCreateProduct)
	productRoutes.Get("/products/my-products", authRequired, h.HandleGetMyProducts)
	productRoutes.Get("/all", h.HandleGetAllProducts)
	productRoutes.Get("/search/:name", h.HandleSearchProducts)
	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/wholesaler/:id", authRequired, h.HandleGetProductsByWholesaler)
	// :id routes go last.
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", authRequired, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", authRequired, h.HandleDeleteProduct)
}

// HandleCreateProduct creates a product for the calling wholesaler.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	in, err := productInput(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}

	res, err := h.service.CreateProduct(c.UserContext(), who, in, productImage(c))
	return h.out.Send(c, res, err)
}

// HandleGetMyProducts lists the calling wholesaler's active products.
func (h *ProductHandler) HandleGetMyProducts(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	products, err := h.service.ListMyProducts(c.UserContext(), who)
	return h.out.Send(c, products, err)
}

// HandleGetAllProducts lists every active product.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		log.Printf("Error getting all products: %v", err)
	}
	return h.out.Send(c, products, err)
}

// HandleSearchProducts lists active products whose name contains :name.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Params("name"))
	return h.out.Send(c, products, err)
}

// HandleGetProductsByCategory lists active products of one category.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByCategory(c.UserContext(), c.Params("category"))
	return h.out.Send(c, products, err)
}

// HandleGetProductByID retrieves a single active product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := pathID(c, "Invalid product ID")
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	return h.out.Send(c, product, err)
}

// HandleUpdateProduct rewrites one of the caller's products.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	id, err := pathID(c, "Invalid product ID")
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	in, err := productInput(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}

	msg, err := h.service.UpdateProduct(c.UserContext(), who, id, in, productImage(c))
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	return h.out.Send(c, fiber.Map{"message": msg}, nil)
}

// HandleDeleteProduct soft-deletes one of the caller's products.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	id, err := pathID(c, "Invalid product ID")
	if err != nil {
		return h.out.Send(c, nil, err)
	}

	msg, err := h.service.DeleteProduct(c.UserContext(), who, id)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	return h.out.Send(c, fiber.Map{"message": msg}, nil)
}

// HandleGetProductsByWholesaler lets a retailer browse a wholesaler's catalog.
func (h *ProductHandler) HandleGetProductsByWholesaler(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	id, err := pathID(c, "Invalid wholesaler ID")
	if err != nil {
		return h.out.Send(c, nil, err)
	}
	summaries, err := h.service.GetProductsByWholesaler(c.UserContext(), who, id)
	return h.out.Send(c, summaries, err)
}

func identity(c *fiber.Ctx) (services.Identity, error) {
	who, ok := middleware.CurrentIdentity(c)
	if !ok {
		return services.Identity{}, apperror.Unauthorized("Authorization header is required")
	}
	return who, nil
}

func pathID(c *fiber.Ctx, msg string) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperror.InvalidInput(msg)
	}
	return uint(id), nil
}

// productInput reads the product fields from a JSON body or from form values.
func productInput(c *fiber.Ctx) (services.ProductInput, error) {
	get := c.FormValue
	if c.Is("json") {
		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			log.Printf("Error parsing product request body: %v", err)
			return services.ProductInput{}, apperror.InvalidInput("Invalid request body")
		}
		get = func(key string, _ ...string) string { return jsonText(body[key]) }
	}

	return services.ProductInput{
		ProductName:   strings.TrimSpace(get("ProductName")),
		Category:      strings.TrimSpace(get("Category")),
		Price:         strings.TrimSpace(get("Price")),
		StockQuantity: strings.TrimSpace(get("StockQuantity")),
		Description:   get("Description"),
	}, nil
}

func jsonText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// productImage returns the uploaded ProductImage file, or nil without one.
func productImage(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile("ProductImage")
	if err != nil {
		return nil
	}
	return file
}
