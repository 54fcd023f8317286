package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

func TestPersonalEntries(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()

	add := func(typ enum.EntryType, amount, category string) {
		t.Helper()
		if _, err := h.personal.CreateEntry(ctx, h.sess, &CreatePersonalInput{Type: typ, Amount: dec(amount), Category: category}); err != nil {
			t.Fatal(err)
		}
	}
	add(enum.EntryTypeIncome, "5000", "Salary")
	add(enum.EntryTypeExpense, "1200.50", "Rent")
	add(enum.EntryTypeExpense, "300", "Food")

	sum, err := h.personal.Summary(ctx, h.sess)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Income.Equal(dec("5000")) || !sum.Expense.Equal(dec("1500.5")) || !sum.Balance.Equal(dec("3499.5")) {
		t.Errorf("summary = %+v", sum)
	}

	res, err := h.personal.ListEntries(ctx, h.sess, pagination.DefaultPagination(), enum.EntryTypeExpense)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 2 || res.Pagination.Total != 2 {
		t.Errorf("expenses = %+v", res.Items)
	}

	if err := h.personal.DeleteEntry(ctx, h.sess, res.Items[0].ID); err != nil {
		t.Fatal(err)
	}
	wantStatus(t, h.personal.DeleteEntry(ctx, h.sess, res.Items[0].ID), http.StatusNotFound)
}

func TestPersonalValidation(t *testing.T) {
	h := newHarness(enum.StockPolicyClamp)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePersonalInput
		field string
	}{
		{"unknown type", CreatePersonalInput{Type: "gift", Amount: dec("1"), Category: "x"}, "type"},
		{"zero amount", CreatePersonalInput{Type: enum.EntryTypeIncome, Amount: dec("0"), Category: "x"}, "amount"},
		{"no category", CreatePersonalInput{Type: enum.EntryTypeIncome, Amount: dec("1"), Category: " "}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.personal.CreateEntry(ctx, h.sess, &tt.input)
			appErr := wantStatus(t, err, http.StatusUnprocessableEntity)
			if appErr.Errors[0].Field != tt.field {
				t.Errorf("field = %s", appErr.Errors[0].Field)
			}
		})
	}

	_, err := h.personal.ListEntries(ctx, h.sess, pagination.DefaultPagination(), "gift")
	wantStatus(t, err, http.StatusUnprocessableEntity)
}
