package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/sangkips/hisab-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	soapID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	riceID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func sale(accountID, customerID uuid.UUID, due string) *entity.Transaction {
	return &entity.Transaction{
		UserID:      accountID,
		CustomerID:  customerID,
		Kind:        enum.TransactionKindSale,
		InvoiceNo:   "INV-00000001",
		TotalAmount: decimal.RequireFromString("300"),
		DueAmount:   decimal.RequireFromString(due),
		Date:        time.Now(),
		Items: []entity.TransactionItem{
			{ProductID: riceID, Quantity: 1},
			{ProductID: soapID, Quantity: 2},
			{ProductID: riceID, Quantity: 4},
		},
	}
}

func expectEntryInsert(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(q(`INSERT INTO "transactions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"total_amount"}).AddRow("300"))
	mock.ExpectExec(q(`INSERT INTO "transaction_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
}

func expectBalanceMove(mock sqlmock.Sqlmock, newDue string) {
	rows := sqlmock.NewRows([]string{"total_due"})
	if newDue != "" {
		rows.AddRow(newDue)
	}
	mock.ExpectQuery(q(`UPDATE "customers" SET "total_due"=total_due + $1`)).
		WillReturnRows(rows)
}

func TestApplyCommitsEntryBalanceAndStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerRepository(db)
	accountID, customerID := uuid.New(), uuid.New()

	expectEntryInsert(mock)
	expectBalanceMove(mock, "140")
	// stock moves run in product id order, one row per product
	mock.ExpectExec(q(`UPDATE "products" SET "quantity"=quantity - $1`)).
		WithArgs(2, sqlmock.AnyArg(), soapID, 2, accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE "products" SET "quantity"=quantity - $1`)).
		WithArgs(5, sqlmock.AnyArg(), riceID, 5, accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.Apply(context.Background(), sale(accountID, customerID, "40"), enum.StockPolicyReject)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !res.CustomerTotalDue.Equal(decimal.RequireFromString("140")) {
		t.Errorf("total due = %s, want 140", res.CustomerTotalDue)
	}
	if len(res.Clamped) != 0 {
		t.Errorf("clamped = %v", res.Clamped)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApplyRollsBackOnMissingCustomer(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLedgerRepository(db)

	expectEntryInsert(mock)
	expectBalanceMove(mock, "")
	mock.ExpectRollback()

	_, err := repo.Apply(context.Background(), sale(uuid.New(), uuid.New(), "40"), enum.StockPolicyReject)
	if !errors.Is(err, ledger.ErrCustomerNotFound) {
		t.Fatalf("err = %v, want ErrCustomerNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestApplyShortStock(t *testing.T) {
	tests := []struct {
		name    string
		policy  enum.StockPolicy
		exists  int
		wantErr error
	}{
		{name: "reject", policy: enum.StockPolicyReject, exists: 1, wantErr: ledger.ErrInsufficientStock},
		{name: "reject unknown product", policy: enum.StockPolicyReject, exists: 0, wantErr: ledger.ErrProductNotFound},
		{name: "clamp", policy: enum.StockPolicyClamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewLedgerRepository(db)
			accountID := uuid.New()

			expectEntryInsert(mock)
			expectBalanceMove(mock, "140")
			mock.ExpectExec(q(`UPDATE "products" SET "quantity"=quantity - $1`)).
				WillReturnResult(sqlmock.NewResult(0, 0))
			if tt.policy == enum.StockPolicyReject {
				mock.ExpectQuery(q(`SELECT count(*) FROM "products"`)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.exists))
				mock.ExpectRollback()
			} else {
				mock.ExpectExec(q(`UPDATE "products" SET "quantity"=GREATEST(quantity - $1, 0)`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(q(`UPDATE "products" SET "quantity"=quantity - $1`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			}

			res, err := repo.Apply(context.Background(), sale(accountID, uuid.New(), "40"), tt.policy)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("Apply: %v", err)
				}
				if len(res.Clamped) != 1 || res.Clamped[0] != soapID {
					t.Errorf("clamped = %v, want [%s]", res.Clamped, soapID)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpenAccount(t *testing.T) {
	accountID := uuid.New()
	newCustomer := func() *entity.Customer {
		return &entity.Customer{ID: uuid.New(), UserID: accountID, Name: "Karim", Phone: "N/A", Upazila: "N/A"}
	}
	opening := func(c *entity.Customer) *entity.Transaction {
		return ledger.NewOpeningBalance(c, decimal.RequireFromString("250.5"), "INV-00000001", time.Now())
	}

	t.Run("customer and opening balance commit together", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLedgerRepository(db)
		c := newCustomer()

		mock.ExpectBegin()
		mock.ExpectQuery(q(`INSERT INTO "customers"`)).
			WillReturnRows(sqlmock.NewRows([]string{"total_due"}).AddRow("0"))
		mock.ExpectQuery(q(`INSERT INTO "transactions"`)).
			WillReturnRows(sqlmock.NewRows([]string{"total_amount"}).AddRow("0"))
		expectBalanceMove(mock, "250.5")
		mock.ExpectCommit()

		if _, err := repo.OpenAccount(context.Background(), c, opening(c)); err != nil {
			t.Fatalf("OpenAccount: %v", err)
		}
		if !c.TotalDue.Equal(decimal.RequireFromString("250.5")) {
			t.Errorf("total due = %s", c.TotalDue)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("failed balance move drops the customer", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLedgerRepository(db)
		c := newCustomer()

		mock.ExpectBegin()
		mock.ExpectQuery(q(`INSERT INTO "customers"`)).
			WillReturnRows(sqlmock.NewRows([]string{"total_due"}).AddRow("0"))
		mock.ExpectQuery(q(`INSERT INTO "transactions"`)).
			WillReturnRows(sqlmock.NewRows([]string{"total_amount"}).AddRow("0"))
		mock.ExpectQuery(q(`UPDATE "customers" SET "total_due"=total_due + $1`)).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		if _, err := repo.OpenAccount(context.Background(), c, opening(c)); err == nil {
			t.Fatal("expected error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("no opening balance", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewLedgerRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(q(`INSERT INTO "customers"`)).
			WillReturnRows(sqlmock.NewRows([]string{"total_due"}).AddRow("0"))
		mock.ExpectCommit()

		if _, err := repo.OpenAccount(context.Background(), newCustomer(), nil); err != nil {
			t.Fatalf("OpenAccount: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}
