package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/repository"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

func TestCreateCustomer(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     CreateCustomerInput
		wantPhone string
		wantField string
	}{
		{name: "valid", input: CreateCustomerInput{Name: " Karim ", Phone: "01712345678"}, wantPhone: "01712345678"},
		{name: "blank phone becomes placeholder", input: CreateCustomerInput{Name: "Karim"}, wantPhone: "N/A"},
		{name: "placeholder kept", input: CreateCustomerInput{Name: "Karim", Phone: "N/A"}, wantPhone: "N/A"},
		{name: "missing name", input: CreateCustomerInput{Phone: "01712345678"}, wantField: "name"},
		{name: "bad phone", input: CreateCustomerInput{Name: "Karim", Phone: "12"}, wantField: "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := h.customers.CreateCustomer(ctx, h.sess, &tt.input)
			if tt.wantField != "" {
				appErr := wantStatus(t, err, http.StatusUnprocessableEntity)
				if len(appErr.Errors) != 1 || appErr.Errors[0].Field != tt.wantField {
					t.Fatalf("errors = %+v, want field %q", appErr.Errors, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateCustomer: %v", err)
			}
			if c.Name != "Karim" || c.Phone != tt.wantPhone {
				t.Errorf("got %q/%q", c.Name, c.Phone)
			}
			if !c.TotalDue.IsZero() {
				t.Errorf("new customer due = %s", c.TotalDue)
			}
		})
	}
}

func TestCustomerRequiresSession(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	_, err := h.customers.CreateCustomer(context.Background(), &account.Session{}, &CreateCustomerInput{Name: "Karim"})
	if err != apperror.ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestCustomersAreScopedToAccount(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()
	c := h.customer(t, "Rahim")

	other := account.NewSession(uuid.New(), "other@example.com")
	_, err := h.customers.GetCustomer(ctx, other, c.ID)
	wantStatus(t, err, http.StatusNotFound)

	list, err := h.customers.ListCustomers(ctx, other, &pagination.PaginationParams{}, "")
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(list.Items) != 0 {
		t.Errorf("other account sees %d customers", len(list.Items))
	}
}

func TestUpdateAndDeleteCustomer(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()
	c := h.customer(t, "Rahim")

	name, area := "Rahim Uddin", "Dhanmondi"
	updated, err := h.customers.UpdateCustomer(ctx, h.sess, &UpdateCustomerInput{ID: c.ID, Name: &name, Upazila: &area})
	if err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	if updated.Name != name || updated.Upazila != area || updated.Phone != c.Phone {
		t.Errorf("updated = %+v", updated)
	}

	empty := "  "
	_, err = h.customers.UpdateCustomer(ctx, h.sess, &UpdateCustomerInput{ID: c.ID, Name: &empty})
	wantStatus(t, err, http.StatusUnprocessableEntity)

	cleared, err := h.customers.UpdateCustomer(ctx, h.sess, &UpdateCustomerInput{ID: c.ID, Upazila: &empty})
	if err != nil || cleared.Upazila != "N/A" {
		t.Fatalf("cleared area = %+v, %v", cleared, err)
	}

	if err := h.customers.DeleteCustomer(ctx, h.sess, c.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	_, err = h.customers.GetCustomer(ctx, h.sess, c.ID)
	wantStatus(t, err, http.StatusNotFound)
	wantStatus(t, h.customers.DeleteCustomer(ctx, h.sess, c.ID), http.StatusNotFound)

	// the row stays for history
	if stored := h.storedCustomer(c.ID); stored.Name != name {
		t.Errorf("stored name = %q", stored.Name)
	}
}

func TestListCustomersSearch(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()
	h.customer(t, "Rahim")
	h.customer(t, "Karim")
	h.customer(t, "Salma")

	res, err := h.customers.ListCustomers(ctx, h.sess, &pagination.PaginationParams{Page: 1, PerPage: 2}, "")
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(res.Items) != 2 || res.Pagination.Total != 3 || !res.Pagination.HasNext {
		t.Errorf("page = %d items, pagination %+v", len(res.Items), res.Pagination)
	}

	res, err = h.customers.ListCustomers(ctx, h.sess, &pagination.PaginationParams{}, " im")
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if res.Pagination.Total != 2 {
		t.Errorf("search total = %d, want 2", res.Pagination.Total)
	}
}

func TestCreateProductValidation(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateProductInput
		field string
	}{
		{name: "missing name", input: CreateProductInput{Quantity: 1}, field: "name"},
		{name: "negative quantity", input: CreateProductInput{Name: "Soap", Quantity: -1}, field: "quantity"},
		{name: "negative buying price", input: CreateProductInput{Name: "Soap", BuyingPrice: dec("-1")}, field: "buying_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.products.CreateProduct(ctx, h.sess, &tt.input)
			appErr := wantStatus(t, err, http.StatusUnprocessableEntity)
			if appErr.Errors[0].Field != tt.field {
				t.Errorf("field = %q, want %q", appErr.Errors[0].Field, tt.field)
			}
		})
	}
}

func TestProductStockCorrectionAndFilter(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()
	soap := h.product(t, "Soap", 3, "20")
	h.product(t, "Rice", 50, "70")

	qty := 12
	price := dec("22.50")
	updated, err := h.products.UpdateProduct(ctx, h.sess, &UpdateProductInput{ID: soap.ID, Quantity: &qty, BuyingPrice: &price})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.Quantity != 12 || !updated.BuyingPrice.Equal(price) {
		t.Errorf("updated = %d @ %s", updated.Quantity, updated.BuyingPrice)
	}
	if got := h.storedQuantity(soap.ID); got != 12 {
		t.Errorf("stored quantity = %d", got)
	}

	neg := -4
	_, err = h.products.UpdateProduct(ctx, h.sess, &UpdateProductInput{ID: soap.ID, Quantity: &neg})
	wantStatus(t, err, http.StatusUnprocessableEntity)

	res, err := h.products.ListProducts(ctx, h.sess, &pagination.PaginationParams{}, repository.ProductFilter{Search: "Ri"})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "Rice" {
		t.Errorf("filtered = %+v", res.Items)
	}

	if err := h.products.DeleteProduct(ctx, h.sess, soap.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	_, err = h.products.GetProduct(ctx, h.sess, soap.ID)
	wantStatus(t, err, http.StatusNotFound)
}

// saleAfterRead commits a sale once, right after the product is read
type saleAfterRead struct {
	fakeProductRepo
	once *sync.Once
	sell func()
}

func (r saleAfterRead) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Product, error) {
	p, err := r.fakeProductRepo.GetByID(ctx, accountID, id)
	r.once.Do(r.sell)
	return p, err
}

func TestProductEditKeepsConcurrentSale(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()
	c := h.customer(t, "Rahim")
	p := h.product(t, "Phone", 10, "60")

	repo := saleAfterRead{
		fakeProductRepo: fakeProductRepo{h.st},
		once:            &sync.Once{},
		sell: func() {
			_, err := h.ledger.RecordTransaction(ctx, h.sess, &RecordTransactionInput{
				CustomerID: c.ID,
				Items:      []LineInput{{ProductID: p.ID, Quantity: 3, UnitSellingPrice: dec("100")}},
				PaidAmount: dec("300"),
			})
			if err != nil {
				t.Errorf("sale: %v", err)
			}
		},
	}
	products := NewProductService(repo, h.broker, testLogger())

	name := "Phone X"
	price := dec("65")
	if _, err := products.UpdateProduct(ctx, h.sess, &UpdateProductInput{ID: p.ID, Name: &name, BuyingPrice: &price}); err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}

	h.st.mu.Lock()
	stored := *h.st.products[p.ID]
	h.st.mu.Unlock()
	if stored.Quantity != 7 {
		t.Errorf("quantity after rename = %d, want 7", stored.Quantity)
	}
	if stored.Name != name || !stored.BuyingPrice.Equal(price) {
		t.Errorf("stored = %q @ %s", stored.Name, stored.BuyingPrice)
	}
}
