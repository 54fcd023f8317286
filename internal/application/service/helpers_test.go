package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/phone"
	"github.com/shopspring/decimal"
)

func phoneValidator() *phone.Validator {
	return phone.NewValidator("BD")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (h *harness) customer(t *testing.T, name string) *entity.Customer {
	t.Helper()
	c, err := h.customers.CreateCustomer(context.Background(), h.sess, &CreateCustomerInput{Name: name, Phone: "01712345678", Upazila: "Mirpur"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return c
}

func (h *harness) product(t *testing.T, name string, qty int, buying string) *entity.Product {
	t.Helper()
	p, err := h.products.CreateProduct(context.Background(), h.sess, &CreateProductInput{Name: name, Category: "General", Quantity: qty, BuyingPrice: dec(buying)})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (h *harness) storedCustomer(id uuid.UUID) entity.Customer {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return *h.st.customers[id]
}

func (h *harness) storedQuantity(id uuid.UUID) int {
	h.st.mu.Lock()
	defer h.st.mu.Unlock()
	return h.st.products[id].Quantity
}

func wantStatus(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", code)
	}
	appErr := apperror.GetAppError(err)
	if appErr.Code != code {
		t.Fatalf("status = %d (%s), want %d", appErr.Code, appErr.Message, code)
	}
	return appErr
}
