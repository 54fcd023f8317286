package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sangkips/hisab-api/pkg/csvcodec"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

// TransactionHandler handles ledger HTTP requests
type TransactionHandler struct {
	ledgerService   *service.LedgerService
	documentService *service.DocumentService
	printerService  *service.PrinterService
	transferService *service.TransferService
	loc             *time.Location
}

// NewTransactionHandler creates a new transaction handler. Filter dates are
// interpreted in loc.
func NewTransactionHandler(
	ledgerService *service.LedgerService,
	documentService *service.DocumentService,
	printerService *service.PrinterService,
	transferService *service.TransferService,
	loc *time.Location,
) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{
		ledgerService:   ledgerService,
		documentService: documentService,
		printerService:  printerService,
		transferService: transferService,
		loc:             loc,
	}
}

// filter converts the query into a ledger filter. to is inclusive.
func (h *TransactionHandler) filter(req *request.TransactionFilterRequest) repository.TransactionFilter {
	var f repository.TransactionFilter
	if req.CustomerID != "" {
		id := uuid.MustParse(req.CustomerID)
		f.CustomerID = &id
	}
	f.Kind = enum.TransactionKind(req.Kind)
	if req.From != "" {
		from, _ := time.ParseInLocation(csvcodec.DateLayout, req.From, h.loc)
		f.From = &from
	}
	if req.To != "" {
		to, _ := time.ParseInLocation(csvcodec.DateLayout, req.To, h.loc)
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	return f
}

// List handles listing ledger entries, newest first
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param customer_id query string false "Customer ID"
// @Param kind query string false "sale, payment, opening_balance or imported"
// @Param from query string false "YYYY-MM-DD"
// @Param to query string false "YYYY-MM-DD, inclusive"
// @Success 200 {object} response.APIResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.TransactionFilterRequest
	if !bindQuery(c, &req) {
		return
	}
	params := &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()

	result, err := h.ledgerService.ListTransactions(c.Request.Context(), sess, params, h.filter(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Transactions retrieved successfully", result)
}

// Record books a sale, or a payment when no items are given. The entry and
// its stock and balance effects are applied atomically.
// @Summary Record transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Unique key per submission"
// @Param request body request.RecordTransactionRequest true "Transaction"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /transactions [post]
func (h *TransactionHandler) Record(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.RecordTransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.LineInput{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			UnitSellingPrice: item.UnitSellingPrice,
		})
	}

	result, err := h.ledgerService.RecordTransaction(c.Request.Context(), sess, &service.RecordTransactionInput{
		CustomerID: req.CustomerID,
		Items:      items,
		PaidAmount: req.PaidAmount,
		Note:       req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction recorded successfully", result)
}

// Get handles getting a ledger entry by ID
func (h *TransactionHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "transaction")
	if !ok {
		return
	}

	tx, err := h.ledgerService.GetTransaction(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transaction retrieved successfully", tx)
}

// Receipt returns the receipt view of an entry with its balance context
func (h *TransactionHandler) Receipt(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "transaction")
	if !ok {
		return
	}

	rc, err := h.documentService.Receipt(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", rc)
}

// InvoicePDF renders an invoice for a sale or a payment receipt
func (h *TransactionHandler) InvoicePDF(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "transaction")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := h.documentService.InvoicePDF(c.Request.Context(), sess, id, &buf); err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, "application/pdf", "invoice-"+id.String()[:8]+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Print sends the thermal receipt to the configured printer. When printing
// fails the receipt is still returned with a 503 so the client can retry.
func (h *TransactionHandler) Print(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "transaction")
	if !ok {
		return
	}

	rc, err := h.printerService.PrintTransaction(c.Request.Context(), sess, id)
	if err != nil {
		if rc != nil {
			response.ErrorWithData(c, err, rc)
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", rc)
}

// Export downloads the filtered ledger as CSV
func (h *TransactionHandler) Export(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.TransactionFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	var buf bytes.Buffer
	if err := h.transferService.ExportTransactions(c.Request.Context(), sess, h.filter(&req), &buf); err != nil {
		response.Error(c, err)
		return
	}

	attachment(c, csvContentType, "transactions.csv")
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Import books ledger entries from an uploaded CSV file
func (h *TransactionHandler) Import(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	_, data, ok := readUpload(c, "file")
	if !ok {
		return
	}

	result, err := h.transferService.ImportTransactions(c.Request.Context(), sess, bytes.NewReader(data))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions imported", result)
}

// Reconcile reports customers whose balance disagrees with the ledger and
// optionally repairs them
func (h *TransactionHandler) Reconcile(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	repair, _ := strconv.ParseBool(c.DefaultQuery("repair", "false"))

	result, err := h.ledgerService.Reconcile(c.Request.Context(), sess, repair)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger reconciled", result)
}
