package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles store settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the store settings, creating defaults on first use
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetSettings(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings merges the given fields into the store settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), sess, &service.UpdateSettingsInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Logo:    req.Logo,
		Color:   req.Color,
		Font:    req.Font,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}

// UploadLogo stores a resized store logo from the "logo" multipart field
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	filename, data, ok := readUpload(c, "logo")
	if !ok {
		return
	}

	settings, err := h.settingsService.UploadLogo(c.Request.Context(), sess, filename, data)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Logo uploaded successfully", settings)
}
