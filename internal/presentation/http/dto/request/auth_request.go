package request

// Email and password rules are enforced by the auth service so that failures
// carry their identity error codes.

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"max=255"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest represents a profile update; omitted fields are unchanged
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=255"`
	Photo *string `json:"photo" binding:"omitempty,max=1024"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
