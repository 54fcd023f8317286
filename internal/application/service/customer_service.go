package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/csvcodec"
	"github.com/sangkips/hisab-api/pkg/pagination"
	"github.com/sangkips/hisab-api/pkg/phone"
	"github.com/sirupsen/logrus"
)

// CustomerService handles customer-related operations.
// Balances are never written here; only the ledger moves total_due.
type CustomerService struct {
	customerRepo repository.CustomerRepository
	phones       *phone.Validator
	events       notifier
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, phones *phone.Validator, broker realtime.Broker, log logrus.FieldLogger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		phones:       phones,
		events:       newNotifier(broker, log),
	}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name    string
	Phone   string
	Upazila string
}

func (s *CustomerService) checkPhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return phone.Placeholder, nil
	}
	if err := s.phones.Validate(raw); err != nil {
		return "", apperror.NewFieldError("phone", "is not a valid phone number for region "+s.phones.Region())
	}
	return raw, nil
}

// area returns the trimmed area, or the placeholder export and import use for "unknown"
func area(raw string) string {
	if a := strings.TrimSpace(raw); a != "" {
		return a
	}
	return csvcodec.DefaultArea
}

// CreateCustomer creates a new customer with a zero balance
func (s *CustomerService) CreateCustomer(ctx context.Context, sess *account.Session, input *CreateCustomerInput) (*entity.Customer, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldError("name", "is required")
	}
	ph, err := s.checkPhone(input.Phone)
	if err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		UserID:  sess.AccountID,
		Name:    name,
		Phone:   ph,
		Upazila: area(input.Upazila),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionCreated, customer.ID)
	return customer, nil
}

// GetCustomer retrieves a live customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, sess *account.Session, id uuid.UUID) (*entity.Customer, error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	customer, err := s.customerRepo.GetByID(ctx, sess.AccountID, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists live customers, optionally filtered by name, phone or area
func (s *CustomerService) ListCustomers(ctx context.Context, sess *account.Session, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	if err := sess.Validate(); err != nil {
		return nil, apperror.ErrUnauthorized
	}
	params.Validate()
	customers, total, err := s.customerRepo.List(ctx, sess.AccountID, params, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input. There is no balance field.
type UpdateCustomerInput struct {
	ID      uuid.UUID
	Name    *string
	Phone   *string
	Upazila *string
}

// UpdateCustomer updates a customer's contact details
func (s *CustomerService) UpdateCustomer(ctx context.Context, sess *account.Session, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, sess, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldError("name", "cannot be empty")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		ph, err := s.checkPhone(*input.Phone)
		if err != nil {
			return nil, err
		}
		customer.Phone = ph
	}
	if input.Upazila != nil {
		customer.Upazila = area(*input.Upazila)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionUpdated, customer.ID)
	return customer, nil
}

// DeleteCustomer soft-deletes a customer. Its transactions stay queryable.
func (s *CustomerService) DeleteCustomer(ctx context.Context, sess *account.Session, id uuid.UUID) error {
	if _, err := s.GetCustomer(ctx, sess, id); err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, sess.AccountID, id); err != nil {
		return err
	}

	s.events.notify(ctx, sess.AccountID, CollectionCustomers, realtime.ActionDeleted, id)
	return nil
}
