package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// MonthKeyLayout is the layout of a monthly bucket key (YYYY-MM)
const MonthKeyLayout = "2006-01"

// MonthlyBucket aggregates the transactions of one calendar month
type MonthlyBucket struct {
	Month  string          `json:"month"`
	Sell   decimal.Decimal `json:"sell"`
	Profit decimal.Decimal `json:"profit"`
	Buy    decimal.Decimal `json:"buy"`
	Due    decimal.Decimal `json:"due"`
	Count  int             `json:"count"`
}

// Summary holds all-time ledger totals
type Summary struct {
	TotalSell        decimal.Decimal `json:"total_sell"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	TotalBuy         decimal.Decimal `json:"total_buy"`
	TotalDue         decimal.Decimal `json:"total_due"`
	TransactionCount int             `json:"transaction_count"`
}

// DailyPoint is the sales of one local day
type DailyPoint struct {
	Date   string          `json:"date"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
}

// PersonalSummary holds income and expense totals
type PersonalSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// FoldMonthly groups transactions by calendar month in loc, newest month first.
// Every transaction lands in exactly one bucket.
func FoldMonthly(txs []entity.Transaction, loc *time.Location) []MonthlyBucket {
	if loc == nil {
		loc = time.UTC
	}
	byMonth := make(map[string]*MonthlyBucket)
	for i := range txs {
		t := &txs[i]
		key := t.Date.In(loc).Format(MonthKeyLayout)
		b, ok := byMonth[key]
		if !ok {
			b = &MonthlyBucket{Month: key, Sell: decimal.Zero, Profit: decimal.Zero, Due: decimal.Zero}
			byMonth[key] = b
		}
		b.Sell = b.Sell.Add(t.TotalAmount)
		b.Profit = b.Profit.Add(t.Profit)
		b.Due = b.Due.Add(t.DueAmount)
		b.Count++
	}

	buckets := make([]MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		b.Buy = b.Sell.Sub(b.Profit)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Month > buckets[j].Month
	})
	return buckets
}

// Summarize returns all-time totals over txs
func Summarize(txs []entity.Transaction) Summary {
	s := Summary{
		TotalSell:   decimal.Zero,
		TotalProfit: decimal.Zero,
		TotalDue:    decimal.Zero,
	}
	for i := range txs {
		s.TotalSell = s.TotalSell.Add(txs[i].TotalAmount)
		s.TotalProfit = s.TotalProfit.Add(txs[i].Profit)
		s.TotalDue = s.TotalDue.Add(txs[i].DueAmount)
	}
	s.TotalBuy = s.TotalSell.Sub(s.TotalProfit)
	s.TransactionCount = len(txs)
	return s
}

// FoldDaily returns one point per day for the n days ending on now's local
// day, oldest first. Days without sales are zero.
func FoldDaily(txs []entity.Transaction, days int, now time.Time, loc *time.Location) []DailyPoint {
	if loc == nil {
		loc = time.UTC
	}
	if days < 1 {
		return []DailyPoint{}
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	points := make([]DailyPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := today.AddDate(0, 0, i-days+1).Format(time.DateOnly)
		points[i] = DailyPoint{Date: key, Sales: decimal.Zero, Profit: decimal.Zero}
		index[key] = i
	}
	for i := range txs {
		key := txs[i].Date.In(loc).Format(time.DateOnly)
		if j, ok := index[key]; ok {
			points[j].Sales = points[j].Sales.Add(txs[i].TotalAmount)
			points[j].Profit = points[j].Profit.Add(txs[i].Profit)
		}
	}
	return points
}

// StartOfWindow returns the local midnight that opens a days-long window ending today
func StartOfWindow(days int, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return today.AddDate(0, 0, 1-days)
}

// SummarizePersonal totals income and expense entries
func SummarizePersonal(entries []entity.PersonalTransaction) PersonalSummary {
	s := PersonalSummary{Income: decimal.Zero, Expense: decimal.Zero}
	for i := range entries {
		switch entries[i].Type {
		case enum.EntryTypeIncome:
			s.Income = s.Income.Add(entries[i].Amount)
		case enum.EntryTypeExpense:
			s.Expense = s.Expense.Add(entries[i].Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// RunningBalance pairs an entry with the customer's balance after it
type RunningBalance struct {
	Transaction entity.Transaction
	Balance     decimal.Decimal
}

// Statement orders entries oldest first and accumulates the balance after each
func Statement(txs []entity.Transaction) []RunningBalance {
	sorted := make([]entity.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	out := make([]RunningBalance, 0, len(sorted))
	balance := decimal.Zero
	for _, t := range sorted {
		balance = balance.Add(t.DueAmount)
		out = append(out, RunningBalance{Transaction: t, Balance: balance})
	}
	return out
}

// Drift is a customer whose stored balance disagrees with its ledger
type Drift struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Stored       decimal.Decimal `json:"stored"`
	Ledger       decimal.Decimal `json:"ledger"`
}

// FindDrift compares stored balances against Σ due per customer
func FindDrift(customers []entity.Customer, dues map[uuid.UUID]decimal.Decimal) []Drift {
	drift := []Drift{}
	for _, c := range customers {
		want, ok := dues[c.ID]
		if !ok {
			want = decimal.Zero
		}
		if !c.TotalDue.Equal(want) {
			drift = append(drift, Drift{
				CustomerID:   c.ID,
				CustomerName: c.Name,
				Stored:       c.TotalDue,
				Ledger:       want,
			})
		}
	}
	return drift
}
