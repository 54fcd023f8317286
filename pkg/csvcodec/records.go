package csvcodec

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format of the transaction export.
const DateLayout = "2006-01-02"

// Import defaults for missing columns
const (
	DefaultArea   = "N/A"
	ImportedPhone = "N/A"
	ImportedArea  = "Imported"
)

// Column headers
var (
	CustomerHeader    = []string{"name", "phone", "area", "due"}
	ProductHeader     = []string{"name", "category", "quantity", "buyingPrice"}
	TransactionHeader = []string{"date", "customerName", "total", "paid", "due", "profit"}
)

// Stats summarises a parse: every data row is either parsed or skipped.
type Stats struct {
	TotalRows int `json:"total_rows"`
	Parsed    int `json:"parsed"`
	Skipped   int `json:"skipped"`
}

// CustomerRow is one line of the customer file
type CustomerRow struct {
	Name  string
	Phone string
	Area  string
	Due   decimal.Decimal
}

// ProductRow is one line of the product file
type ProductRow struct {
	Name        string
	Category    string
	Quantity    int
	BuyingPrice decimal.Decimal
}

// TransactionRow is one line of the transaction file
type TransactionRow struct {
	Date         time.Time
	CustomerName string
	Total        decimal.Decimal
	Paid         decimal.Decimal
	Due          decimal.Decimal
	Profit       decimal.Decimal
}

// WriteCustomers writes the customer export
func WriteCustomers(w io.Writer, rows []CustomerRow) error {
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Header(CustomerHeader...); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Text(r.Name), Text(r.Phone), Text(r.Area), Number(r.Due)); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// ParseCustomers reads a customer file. Name and phone are required; area
// defaults to "N/A" and due to zero.
func ParseCustomers(r io.Reader) ([]CustomerRow, Stats, error) {
	rows, malformed, err := ReadRows(r)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{TotalRows: len(rows) + malformed, Skipped: malformed}

	out := make([]CustomerRow, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" {
			stats.Skipped++
			continue
		}
		due, err := parseAmount(column(row, 3))
		if err != nil {
			stats.Skipped++
			continue
		}
		area := column(row, 2)
		if area == "" {
			area = DefaultArea
		}
		out = append(out, CustomerRow{Name: row[0], Phone: row[1], Area: area, Due: due})
	}
	stats.Parsed = len(out)
	return out, stats, nil
}

// WriteProducts writes the product export
func WriteProducts(w io.Writer, rows []ProductRow) error {
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Header(ProductHeader...); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(Text(r.Name), Text(r.Category), Int(r.Quantity), Number(r.BuyingPrice)); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// ParseProducts reads a product file. All four columns are required; quantity
// must be a non-negative integer and the price a non-negative number.
func ParseProducts(r io.Reader) ([]ProductRow, Stats, error) {
	rows, malformed, err := ReadRows(r)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{TotalRows: len(rows) + malformed, Skipped: malformed}

	out := make([]ProductRow, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || row[0] == "" {
			stats.Skipped++
			continue
		}
		qty, err := decimal.NewFromString(row[2])
		if err != nil || !qty.IsInteger() || qty.IsNegative() {
			stats.Skipped++
			continue
		}
		price, err := parseAmount(row[3])
		if err != nil || price.IsNegative() || row[3] == "" {
			stats.Skipped++
			continue
		}
		out = append(out, ProductRow{
			Name:        row[0],
			Category:    row[1],
			Quantity:    int(qty.IntPart()),
			BuyingPrice: price,
		})
	}
	stats.Parsed = len(out)
	return out, stats, nil
}

// WriteTransactions writes the raw transaction export. Dates are rendered in loc.
func WriteTransactions(w io.Writer, rows []TransactionRow, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	if err := cw.Header(TransactionHeader...); err != nil {
		return err
	}
	for _, r := range rows {
		err := cw.Write(
			Field{Value: r.Date.In(loc).Format(DateLayout)},
			Text(r.CustomerName),
			Number(r.Total),
			Number(r.Paid),
			Number(r.Due),
			Number(r.Profit),
		)
		if err != nil {
			return err
		}
	}
	return cw.Flush()
}

// ParseTransactions reads a transaction file. The first five columns are
// required and profit defaults to zero. Dates are interpreted in loc; an empty
// date yields the zero time.
func ParseTransactions(r io.Reader, loc *time.Location) ([]TransactionRow, Stats, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows, malformed, err := ReadRows(r)
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{TotalRows: len(rows) + malformed, Skipped: malformed}

	out := make([]TransactionRow, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 || row[1] == "" {
			stats.Skipped++
			continue
		}

		var date time.Time
		if row[0] != "" {
			date, err = time.ParseInLocation(DateLayout, row[0], loc)
			if err != nil {
				stats.Skipped++
				continue
			}
		}

		amounts := make([]decimal.Decimal, 4)
		ok := true
		for i, raw := range []string{row[2], row[3], row[4], column(row, 5)} {
			amounts[i], err = parseAmount(raw)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			stats.Skipped++
			continue
		}

		out = append(out, TransactionRow{
			Date:         date,
			CustomerName: row[1],
			Total:        amounts[0],
			Paid:         amounts[1],
			Due:          amounts[2],
			Profit:       amounts[3],
		})
	}
	stats.Parsed = len(out)
	return out, stats, nil
}
