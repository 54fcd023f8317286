package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	domainRepo "github.com/sangkips/hisab-api/internal/domain/repository"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository. Accounts are global;
// they are the scope everything else is keyed by.
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

// findOne returns the first account matching the condition, or nil
func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// GetByEmail matches case-insensitively; emails are stored lower-cased
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	if googleID == "" {
		return nil, nil
	}
	return r.findOne(ctx, "google_id = ?", googleID)
}

// Update writes the profile columns. The password hash is only written when set.
func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("name", "photo", "google_id", "password", "updated_at").
		Omit(omitEmptyPassword(user)...).
		Updates(user).Error
}

func omitEmptyPassword(user *entity.User) []string {
	if user.Password == "" {
		return []string{"password"}
	}
	return nil
}
