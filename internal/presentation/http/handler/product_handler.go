package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService  *service.ProductService
	transferService *service.TransferService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService, transferService *service.TransferService) *ProductHandler {
	return &ProductHandler{productService: productService, transferService: transferService}
}

// List handles listing products
// @Summary List products
// @Tags products
// @Produce json
// @Param search query string false "Name"
// @Param category query string false "Category"
// @Success 200 {object} response.APIResponse
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var filter request.ProductFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage}
	params.Validate()

	result, err := h.productService.ListProducts(c.Request.Context(), sess, params, repository.ProductFilter{
		Search:   filter.Search,
		Category: filter.Category,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Products retrieved successfully", result)
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), sess, &service.CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		BuyingPrice: req.BuyingPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Get handles getting a product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	var req request.UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), sess, &service.UpdateProductInput{
		ID:          id,
		Name:        req.Name,
		Category:    req.Category,
		Quantity:    req.Quantity,
		BuyingPrice: req.BuyingPrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), sess, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product deleted successfully", nil)
}

// Export downloads all products as CSV
func (h *ProductHandler) Export(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.transferService.ExportProducts(c.Request.Context(), sess, &buf); err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, csvContentType, "products.csv")
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Import loads products from an uploaded CSV file
func (h *ProductHandler) Import(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	_, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	result, err := h.transferService.ImportProducts(c.Request.Context(), sess, bytes.NewReader(data))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Products imported", result)
}
