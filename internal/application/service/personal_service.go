package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PersonalService handles the owner's personal income and expense entries
type PersonalService struct {
	personalRepo repository.PersonalRepository
	events       notifier
	now          func() time.Time
}

// NewPersonalService creates a new personal ledger service
func NewPersonalService(personalRepo repository.PersonalRepository, broker realtime.Broker, log logrus.FieldLogger) *PersonalService {
	return &PersonalService{
		personalRepo: personalRepo,
		events:       newNotifier(broker, log),
		now:          time.Now,
	}
}

// CreatePersonalInput represents a new income or expense entry
type CreatePersonalInput struct {
	Type     enum.EntryType
	Amount   decimal.Decimal
	Category string
	Note     string
	Date     *time.Time
}

// CreateEntry records an income or expense
func (s *PersonalService) CreateEntry(ctx context.Context, sess *account.Session, input *CreatePersonalInput) (*entity.PersonalTransaction, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if !input.Type.IsValid() {
		return nil, apperror.NewFieldError("type", "must be income or expense")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewFieldError("amount", "must be greater than zero")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, apperror.NewFieldError("category", "is required")
	}

	date := s.now()
	if input.Date != nil && !input.Date.IsZero() {
		date = *input.Date
	}

	entry := &entity.PersonalTransaction{
		UserID:   sess.AccountID,
		Type:     input.Type,
		Amount:   input.Amount,
		Category: category,
		Note:     strings.TrimSpace(input.Note),
		Date:     date,
	}
	if err := s.personalRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.events.notify(ctx, sess.AccountID, CollectionPersonal, realtime.ActionCreated, entry.ID)
	return entry, nil
}

// ListEntries lists entries newest first, optionally of one type
func (s *PersonalService) ListEntries(ctx context.Context, sess *account.Session, params *pagination.PaginationParams, entryType enum.EntryType) (*pagination.PaginatedResult[entity.PersonalTransaction], error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if entryType != "" && !entryType.IsValid() {
		return nil, apperror.NewFieldError("type", "must be income or expense")
	}
	params.Validate()

	entries, total, err := s.personalRepo.List(ctx, sess.AccountID, params, entryType)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(entries, pag), nil
}

// DeleteEntry removes an entry
func (s *PersonalService) DeleteEntry(ctx context.Context, sess *account.Session, id uuid.UUID) error {
	if err := sess.Validate(); err != nil {
		return apperror.ErrUnauthorized
	}
	entry, err := s.personalRepo.GetByID(ctx, sess.AccountID, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperror.NewNotFoundError("Entry")
	}
	if err := s.personalRepo.Delete(ctx, sess.AccountID, id); err != nil {
		return err
	}

	s.events.notify(ctx, sess.AccountID, CollectionPersonal, realtime.ActionDeleted, id)
	return nil
}

// Summary totals income and expense
func (s *PersonalService) Summary(ctx context.Context, sess *account.Session) (*ledger.PersonalSummary, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	entries, err := s.personalRepo.ListAll(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	summary := ledger.SummarizePersonal(entries)
	return &summary, nil
}
