package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/oauth"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// GoogleIdentity is the Google sign-in flow used by AuthService
type GoogleIdentity interface {
	IsConfigured() bool
	NewState() (string, error)
	VerifyState(state string) error
	AuthURL(state string) string
	Authenticate(ctx context.Context, code string) (*oauth.GoogleUserInfo, error)
}

// AuthService handles account sign-up, sign-in and profile operations.
// Every failure it returns is a typed identity AppError.
type AuthService struct {
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
	jwtManager   *utils.JWTManager
	google       GoogleIdentity
	validate     *validator.Validate
	log          logrus.FieldLogger
}

// NewAuthService creates a new auth service. google may be nil.
func NewAuthService(
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
	jwtManager *utils.JWTManager,
	google GoogleIdentity,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		jwtManager:   jwtManager,
		google:       google,
		validate:     validator.New(),
		log:          log,
	}
}

// RegisterInput represents the sign-up input
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput represents the sign-in input
type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput represents a signed-in account with its tokens
type AuthOutput struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// unavailable logs a credential store failure and hides it behind the typed error
func (s *AuthService) unavailable(op string, err error) error {
	s.log.WithFields(logrus.Fields{"module": "auth", "op": op}).WithError(err).Error("credential store error")
	return apperror.ErrIdentityUnavailable
}

func (s *AuthService) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", apperror.ErrInvalidEmail
	}
	return email, nil
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	email, err := s.normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if utils.IsWeakPassword(input.Password) {
		return nil, apperror.ErrWeakPassword
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.unavailable("register", err)
	}
	if existing != nil {
		return nil, apperror.ErrEmailAlreadyInUse
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, s.unavailable("register", err)
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.unavailable("register", err)
	}
	s.ensureSettings(ctx, user.ID)

	return s.issue(user)
}

// Login signs an account in. Unknown email and bad password are not told apart.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	email, err := s.normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.unavailable("login", err)
	}
	if user == nil || !user.HasPassword() || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(user)
}

// RefreshToken exchanges a refresh token for a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired
		}
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.unavailable("refresh", err)
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}

	return s.issue(user)
}

// GetCurrentUser returns the signed-in account
func (s *AuthService) GetCurrentUser(ctx context.Context, sess *account.Session) (*entity.User, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, sess.AccountID)
	if err != nil {
		return nil, s.unavailable("profile", err)
	}
	if user == nil {
		return nil, apperror.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfileInput represents the profile update input
type UpdateProfileInput struct {
	Name  *string
	Photo *string
}

// UpdateProfile updates the signed-in account's name and photo
func (s *AuthService) UpdateProfile(ctx context.Context, sess *account.Session, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.GetCurrentUser(ctx, sess)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Photo != nil {
		user.Photo = input.Photo
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.unavailable("update_profile", err)
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the signed-in account's password
func (s *AuthService) ChangePassword(ctx context.Context, sess *account.Session, input *ChangePasswordInput) error {
	user, err := s.GetCurrentUser(ctx, sess)
	if err != nil {
		return err
	}

	// Accounts created through Google have no password to check.
	if user.HasPassword() && !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.ErrWrongPassword
	}
	if utils.IsWeakPassword(input.NewPassword) {
		return apperror.ErrWeakPassword
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return s.unavailable("change_password", err)
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return s.unavailable("change_password", err)
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in is configured
func (s *AuthService) GoogleEnabled() bool {
	return s.google != nil && s.google.IsConfigured()
}

// GoogleAuthURL returns the consent URL with a fresh state
func (s *AuthService) GoogleAuthURL() (string, error) {
	if !s.GoogleEnabled() {
		return "", apperror.NewAppError(404, "Google sign-in is not enabled")
	}
	state, err := s.google.NewState()
	if err != nil {
		return "", s.unavailable("google_state", err)
	}
	return s.google.AuthURL(state), nil
}

// GoogleCallback completes Google sign-in. An existing account with the same
// email is linked; otherwise a new password-less account is created.
func (s *AuthService) GoogleCallback(ctx context.Context, state, code string) (*AuthOutput, error) {
	if !s.GoogleEnabled() {
		return nil, apperror.NewAppError(404, "Google sign-in is not enabled")
	}
	if err := s.google.VerifyState(state); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	info, err := s.google.Authenticate(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrInvalidCode) || errors.Is(err, oauth.ErrUnverifiedEmail) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, s.unavailable("google_callback", err)
	}

	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, s.unavailable("google_callback", err)
	}
	if user == nil {
		user, err = s.linkGoogleAccount(ctx, info)
		if err != nil {
			return nil, err
		}
	}

	return s.issue(user)
}

func (s *AuthService) linkGoogleAccount(ctx context.Context, info *oauth.GoogleUserInfo) (*entity.User, error) {
	email := strings.ToLower(info.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.unavailable("google_link", err)
	}

	googleID := info.ID
	if user != nil {
		user.GoogleID = &googleID
		if user.Photo == nil && info.Picture != "" {
			user.Photo = &info.Picture
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, s.unavailable("google_link", err)
		}
		return user, nil
	}

	user = &entity.User{
		Name:     info.Name,
		Email:    email,
		GoogleID: &googleID,
	}
	if info.Picture != "" {
		user.Photo = &info.Picture
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.unavailable("google_link", err)
	}
	s.ensureSettings(ctx, user.ID)
	return user, nil
}

// ensureSettings creates default store settings; failures are left for the first settings read.
func (s *AuthService) ensureSettings(ctx context.Context, userID uuid.UUID) {
	if s.settingsRepo == nil {
		return
	}
	if err := s.settingsRepo.Create(ctx, entity.DefaultStoreSettings(userID)); err != nil {
		s.log.WithField("user_id", userID).WithError(err).Warn("failed to create default store settings")
	}
}

func (s *AuthService) issue(user *entity.User) (*AuthOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, s.unavailable("issue_token", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, s.unavailable("issue_token", err)
	}
	return &AuthOutput{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
