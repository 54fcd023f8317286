package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// CustomerHandler handles customer-related HTTP requests
type CustomerHandler struct {
	customerService *service.CustomerService
	ledgerService   *service.LedgerService
	documentService *service.DocumentService
	transferService *service.TransferService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(
	customerService *service.CustomerService,
	ledgerService *service.LedgerService,
	documentService *service.DocumentService,
	transferService *service.TransferService,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		ledgerService:   ledgerService,
		documentService: documentService,
		transferService: transferService,
	}
}

// List handles listing customers
// @Summary List customers
// @Tags customers
// @Produce json
// @Param search query string false "Name, phone or area"
// @Param page query int false "Page"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.APIResponse
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	result, err := h.customerService.ListCustomers(c.Request.Context(), sess, pageParams(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Customers retrieved successfully", result)
}

// Create handles creating a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.CreateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), sess, &service.CreateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Upazila: req.Upazila,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Customer created successfully", customer)
}

// Get handles getting a customer by ID
func (h *CustomerHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomer(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer retrieved successfully", customer)
}

// Update handles updating a customer. The balance cannot be edited.
func (h *CustomerHandler) Update(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	var req request.UpdateCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), sess, &service.UpdateCustomerInput{
		ID:      id,
		Name:    req.Name,
		Phone:   req.Phone,
		Upazila: req.Upazila,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated successfully", customer)
}

// Delete handles soft-deleting a customer
func (h *CustomerHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), sess, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer deleted successfully", nil)
}

// History returns the customer with their ledger entries, newest first
func (h *CustomerHandler) History(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	history, err := h.ledgerService.CustomerHistory(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer history retrieved successfully", history)
}

// Payment records a payment against the customer's due
// @Summary Record payment
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body request.PaymentRequest true "Payment"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /customers/{id}/payments [post]
func (h *CustomerHandler) Payment(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.ledgerService.RecordPayment(c.Request.Context(), sess, id, req.Amount, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", result)
}

// StatementPDF renders the customer's account statement
func (h *CustomerHandler) StatementPDF(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "customer")
	if !ok {
		return
	}

	var buf bytes.Buffer
	customer, err := h.documentService.StatementPDF(c.Request.Context(), sess, id, &buf)
	if err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, "application/pdf", "statement-"+customer.ID.String()[:8]+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Export downloads all customers as CSV
func (h *CustomerHandler) Export(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.transferService.ExportCustomers(c.Request.Context(), sess, &buf); err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, csvContentType, "customers.csv")
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Import loads customers from an uploaded CSV file
func (h *CustomerHandler) Import(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	_, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	result, err := h.transferService.ImportCustomers(c.Request.Context(), sess, bytes.NewReader(data))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customers imported", result)
}
