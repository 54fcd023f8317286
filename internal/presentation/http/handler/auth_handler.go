package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/request"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sangkips/hisab-api/pkg/apperror"
)

// GoogleRedirects builds the frontend URLs the Google callback returns to
type GoogleRedirects interface {
	SuccessRedirect(accessToken, refreshToken string) string
	ErrorRedirect(code string) string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	redirects   GoogleRedirects
}

// NewAuthHandler creates a new auth handler. redirects may be nil when
// Google sign-in is disabled.
func NewAuthHandler(authService *service.AuthService, redirects GoogleRedirects) *AuthHandler {
	return &AuthHandler{authService: authService, redirects: redirects}
}

func tokenPayload(output *service.AuthOutput) gin.H {
	return gin.H{
		"user":          output.User,
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
		"token_type":    "Bearer",
	}
}

// Register handles account sign-up
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", tokenPayload(output))
}

// Login handles sign-in
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenPayload(output))
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", tokenPayload(output))
}

// Logout is stateless; clients discard their tokens
func (h *AuthHandler) Logout(c *gin.Context) {
	response.OK(c, "Logout successful", nil)
}

// Me returns the signed-in account
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", user)
}

// UpdateProfile updates the display name and photo
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), sess, &service.UpdateProfileInput{
		Name:  req.Name,
		Photo: req.Photo,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile updated successfully", user)
}

// ChangePassword replaces the account password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req request.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), sess, &service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully", nil)
}

// GoogleLogin redirects to the Google consent screen
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	url, err := h.authService.GoogleAuthURL()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes Google sign-in and hands the tokens to the frontend
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.redirects == nil {
		response.NotFound(c, "Google sign-in is not enabled")
		return
	}
	if c.Query("error") != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.redirects.ErrorRedirect(apperror.CodeInvalidCredential))
		return
	}

	output, err := h.authService.GoogleCallback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		code := apperror.GetAppError(err).ErrorCode
		if code == "" {
			code = apperror.CodeNetworkRequestFail
		}
		c.Redirect(http.StatusTemporaryRedirect, h.redirects.ErrorRedirect(code))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.redirects.SuccessRedirect(output.AccessToken, output.RefreshToken))
}
