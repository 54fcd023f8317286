package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// PersonalHandler handles personal income and expense HTTP requests
type PersonalHandler struct {
	personalService *service.PersonalService
}

// NewPersonalHandler creates a new personal handler
func NewPersonalHandler(personalService *service.PersonalService) *PersonalHandler {
	return &PersonalHandler{personalService: personalService}
}

// List handles listing entries, optionally filtered by ?type=income|expense
func (h *PersonalHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	result, err := h.personalService.ListEntries(c.Request.Context(), sess, pageParams(c), enum.EntryType(c.Query("type")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Entries retrieved successfully", result)
}

// Create handles recording an income or expense
func (h *PersonalHandler) Create(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.CreatePersonalRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.personalService.CreateEntry(c.Request.Context(), sess, &service.CreatePersonalInput{
		Type:     enum.EntryType(req.Type),
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
		Date:     req.Date,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Entry created successfully", entry)
}

// Delete handles deleting an entry
func (h *PersonalHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "entry")
	if !ok {
		return
	}

	if err := h.personalService.DeleteEntry(c.Request.Context(), sess, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entry deleted successfully", nil)
}

// Summary returns income, expense and balance totals
func (h *PersonalHandler) Summary(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	summary, err := h.personalService.Summary(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Summary retrieved successfully", summary)
}
