package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/internal/infrastructure/storage"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// LogoMaxWidth is the widest a stored logo can be, in pixels
const LogoMaxWidth = 512

// SettingsService handles store settings and the logo
type SettingsService struct {
	settingsRepo  repository.SettingsRepository
	store         storage.Store
	maxUploadSize int64
	validate      *validator.Validate
	events        notifier
	log           logrus.FieldLogger
	now           func() time.Time
}

// NewSettingsService creates a new settings service
func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	store storage.Store,
	maxUploadSize int64,
	broker realtime.Broker,
	log logrus.FieldLogger,
) *SettingsService {
	return &SettingsService{
		settingsRepo:  settingsRepo,
		store:         store,
		maxUploadSize: maxUploadSize,
		validate:      validator.New(),
		events:        newNotifier(broker, log),
		log:           log,
		now:           time.Now,
	}
}

// GetSettings retrieves the store settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context, sess *account.Session) (*entity.StoreSettings, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	return s.getOrCreate(ctx, sess.AccountID)
}

func (s *SettingsService) getOrCreate(ctx context.Context, userID uuid.UUID) (*entity.StoreSettings, error) {
	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	if err := s.settingsRepo.Create(ctx, entity.DefaultStoreSettings(userID)); err != nil {
		return nil, err
	}
	// Re-read: a concurrent first read may have won the insert.
	settings, err = s.settingsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, apperror.NewInternalError("Failed to create store settings")
	}
	return settings, nil
}

// UpdateSettingsInput represents a merge update; nil fields are left unchanged
type UpdateSettingsInput struct {
	Name    *string
	Address *string
	Phone   *string
	Logo    *string
	Color   *string
	Font    *string
}

// UpdateSettings merges the given fields into the store settings
func (s *SettingsService) UpdateSettings(ctx context.Context, sess *account.Session, input *UpdateSettingsInput) (*entity.StoreSettings, error) {
	settings, err := s.GetSettings(ctx, sess)
	if err != nil {
		return nil, err
	}

	if input.Color != nil {
		if err := s.validate.Var(*input.Color, "hexcolor"); err != nil {
			return nil, apperror.NewFieldError("color", "must be a hex colour such as #4f46e5")
		}
		settings.InvoiceColor = *input.Color
	}
	if input.Name != nil {
		settings.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		settings.Address = *input.Address
	}
	if input.Phone != nil {
		settings.Phone = *input.Phone
	}
	if input.Logo != nil {
		settings.Logo = *input.Logo
	}
	if input.Font != nil {
		settings.InvoiceFont = *input.Font
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	s.events.notify(ctx, sess.AccountID, CollectionSettings, realtime.ActionUpdated, settings.ID)
	return settings, nil
}

// UploadLogo stores a JPEG or PNG logo, downsized to LogoMaxWidth and
// re-encoded as PNG, and writes its URL into the settings
func (s *SettingsService) UploadLogo(ctx context.Context, sess *account.Session, filename string, data []byte) (*entity.StoreSettings, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if len(data) == 0 {
		return nil, apperror.NewFieldError("logo", "file is empty")
	}
	if s.maxUploadSize > 0 && int64(len(data)) > s.maxUploadSize {
		return nil, apperror.NewFieldError("logo", fmt.Sprintf("file is larger than %d bytes", s.maxUploadSize))
	}

	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
	default:
		return nil, apperror.NewFieldError("logo", "only JPEG and PNG images are accepted")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.NewFieldError("logo", "image could not be decoded")
	}
	if img.Bounds().Dx() > LogoMaxWidth {
		img = imaging.Resize(img, LogoMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}

	key := fmt.Sprintf("logos/%s_%d_%s.png", sess.AccountID, s.now().Unix(), utils.SanitizeFilename(filename))
	url, err := s.store.Put(ctx, key, "image/png", buf.Bytes())
	if err != nil {
		s.log.WithFields(logrus.Fields{"key": key, "store": s.store.Kind()}).WithError(err).Error("failed to store logo")
		return nil, apperror.NewInternalError("Failed to store logo")
	}

	return s.UpdateSettings(ctx, sess, &UpdateSettingsInput{Logo: &url})
}

// Header returns the receipt header built from the account's settings
func (s *SettingsService) Header(ctx context.Context, sess *account.Session) (entity.ReceiptHeader, error) {
	settings, err := s.GetSettings(ctx, sess)
	if err != nil {
		return entity.ReceiptHeader{}, err
	}
	return entity.ReceiptHeader{
		StoreName: settings.Name,
		Address:   settings.Address,
		Phone:     settings.Phone,
		Logo:      settings.Logo,
		Color:     settings.InvoiceColor,
	}, nil
}
