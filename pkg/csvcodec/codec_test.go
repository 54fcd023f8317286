package csvcodec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWriteCustomersFormat(t *testing.T) {
	var buf bytes.Buffer
	rows := []CustomerRow{
		{Name: `Rahim "Bhai"`, Phone: "01712345678", Area: "Mirpur", Due: decimal.NewFromInt(250)},
	}
	if err := WriteCustomers(&buf, rows); err != nil {
		t.Fatalf("WriteCustomers: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, BOM) {
		t.Fatalf("output does not start with a byte-order mark: %q", out[:8])
	}
	want := BOM + "\"name\",\"phone\",\"area\",\"due\"\n" +
		"\"Rahim \"\"Bhai\"\"\",\"01712345678\",\"Mirpur\",250\n"
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestCustomerRoundTrip(t *testing.T) {
	in := []CustomerRow{
		{Name: "রহিম উল্লাহ", Phone: "01712345678", Area: "মিরপুর", Due: decimal.NewFromInt(1500)},
		{Name: "Karim, Sheikh", Phone: "01887654321", Area: "Uttara", Due: decimal.RequireFromString("-20.5")},
		{Name: "Zero", Phone: "N/A", Area: "N/A", Due: decimal.Zero},
	}

	var buf bytes.Buffer
	if err := WriteCustomers(&buf, in); err != nil {
		t.Fatalf("WriteCustomers: %v", err)
	}

	out, stats, err := ParseCustomers(&buf)
	if err != nil {
		t.Fatalf("ParseCustomers: %v", err)
	}
	if stats.Parsed != len(in) || stats.Skipped != 0 || stats.TotalRows != len(in) {
		t.Fatalf("stats = %+v", stats)
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Phone != in[i].Phone || out[i].Area != in[i].Area {
			t.Errorf("row %d: got %+v, want %+v", i, out[i], in[i])
		}
		if !out[i].Due.Equal(in[i].Due) {
			t.Errorf("row %d: due %s, want %s", i, out[i].Due, in[i].Due)
		}
	}
}

func TestParseCustomersDefaultsAndSkips(t *testing.T) {
	input := "name,phone,area\n" +
		"Only Name\n" +
		"\n" +
		"\"Jamal\",\"017\"\n" +
		"\"Kamal\",\"018\",\"\",abc\n" +
		"\"Hasan\",\"019\",\"Savar\",\"12\"\n"

	rows, stats, err := ParseCustomers(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCustomers: %v", err)
	}
	if stats.TotalRows != 4 || stats.Parsed != 2 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if rows[0].Name != "Jamal" || rows[0].Area != DefaultArea || !rows[0].Due.IsZero() {
		t.Errorf("defaults not applied: %+v", rows[0])
	}
	if rows[1].Name != "Hasan" || !rows[1].Due.Equal(decimal.NewFromInt(12)) {
		t.Errorf("unexpected row: %+v", rows[1])
	}
}

func TestParseProducts(t *testing.T) {
	input := BOM + "name,category,quantity,buyingPrice\n" +
		"\"Phone X\",\"Electronics\",15,12000\n" +
		"\"Headphone\",\"Accessories\",5,800.50\n" +
		"\"Broken\",\"Misc\",many,10\n" +
		"\"Negative\",\"Misc\",-1,10\n" +
		"\"Fraction\",\"Misc\",1.5,10\n" +
		"\"Short\",\"Misc\",3\n"

	rows, stats, err := ParseProducts(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseProducts: %v", err)
	}
	if stats.Parsed != 2 || stats.Skipped != 4 {
		t.Fatalf("stats = %+v", stats)
	}
	if rows[0].Name != "Phone X" || rows[0].Quantity != 15 || !rows[0].BuyingPrice.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if !rows[1].BuyingPrice.Equal(decimal.RequireFromString("800.5")) {
		t.Errorf("unexpected price: %s", rows[1].BuyingPrice)
	}
}

func TestProductRoundTrip(t *testing.T) {
	in := []ProductRow{
		{Name: "স্মার্টফোন X", Category: "ইলেকট্রনিক্স", Quantity: 15, BuyingPrice: decimal.NewFromInt(12000)},
		{Name: "Cable", Category: "", Quantity: 0, BuyingPrice: decimal.RequireFromString("9.99")},
	}
	var buf bytes.Buffer
	if err := WriteProducts(&buf, in); err != nil {
		t.Fatalf("WriteProducts: %v", err)
	}
	out, _, err := ParseProducts(&buf)
	if err != nil {
		t.Fatalf("ParseProducts: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d rows, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].Category != in[i].Category || out[i].Quantity != in[i].Quantity || !out[i].BuyingPrice.Equal(in[i].BuyingPrice) {
			t.Errorf("row %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	loc := time.FixedZone("BDT", 6*60*60)
	in := []TransactionRow{
		{
			Date:         time.Date(2024, 3, 31, 23, 30, 0, 0, loc),
			CustomerName: "Rahim",
			Total:        decimal.NewFromInt(200),
			Paid:         decimal.NewFromInt(150),
			Due:          decimal.NewFromInt(50),
			Profit:       decimal.NewFromInt(80),
		},
	}

	var buf bytes.Buffer
	if err := WriteTransactions(&buf, in, loc); err != nil {
		t.Fatalf("WriteTransactions: %v", err)
	}
	if !strings.Contains(buf.String(), "2024-03-31,\"Rahim\",200,150,50,80") {
		t.Fatalf("unexpected export: %q", buf.String())
	}

	out, stats, err := ParseTransactions(&buf, loc)
	if err != nil {
		t.Fatalf("ParseTransactions: %v", err)
	}
	if stats.Parsed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	got := out[0]
	if got.Date.Format(DateLayout) != "2024-03-31" || got.CustomerName != "Rahim" {
		t.Errorf("unexpected row: %+v", got)
	}
	if !got.Due.Equal(decimal.NewFromInt(50)) || !got.Profit.Equal(decimal.NewFromInt(80)) {
		t.Errorf("unexpected amounts: %+v", got)
	}
}

func TestParseTransactionsTolerance(t *testing.T) {
	input := "date,customerName,total,paid,due,profit\n" +
		"2024-01-05,\"A\",100,100,0\n" +
		"not-a-date,\"B\",100,0,100,10\n" +
		",\"C\",50,0,50,5\n" +
		"2024-01-06,\"D\",x,0,50,5\n" +
		"2024-01-07,\"\",10,0,10,1\n"

	rows, stats, err := ParseTransactions(strings.NewReader(input), time.UTC)
	if err != nil {
		t.Fatalf("ParseTransactions: %v", err)
	}
	if stats.TotalRows != 5 || stats.Parsed != 2 || stats.Skipped != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if !rows[0].Profit.IsZero() {
		t.Errorf("missing profit should default to zero, got %s", rows[0].Profit)
	}
	if !rows[1].Date.IsZero() {
		t.Errorf("empty date should give zero time, got %v", rows[1].Date)
	}
}
