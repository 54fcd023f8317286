package printer

import (
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/currency"
)

// BuildReceipt lays out a receipt for a printer of the given width.
// Amounts use the ASCII currency form; most printers have no code page for ৳.
func BuildReceipt(rc *entity.Receipt, width int, money *currency.Formatter) []byte {
	if money == nil {
		money = currency.NewFormatter("")
	}
	sale := len(rc.Items) > 0

	doc := NewDocument(width).Center()
	doc.Bold(true).Size(SizeDouble).Line(rc.Header.StoreName).Size(SizeNormal).Bold(false)
	for _, l := range []string{rc.Header.Address, rc.Header.Phone} {
		if l != "" {
			doc.Line(l)
		}
	}
	doc.Feed(1).Bold(true).Line(rc.Title).Bold(false)

	doc.Left().
		Pair("No", rc.InvoiceNo).
		Pair("Date", rc.Date).
		Pair("Customer", rc.Customer).
		Rule('-')

	if sale {
		for _, it := range rc.Items {
			doc.Item(it.Quantity, it.Name, money.Number(it.Total))
		}
		doc.Rule('-').Bold(true).Pair("Total", money.Plain(rc.Total)).Bold(false)
	}
	doc.Pair("Paid", money.Plain(rc.Paid))
	if sale {
		doc.Pair("Due", money.Plain(rc.Due))
	}
	doc.Pair("Previous due", money.Plain(rc.PreviousDue)).
		Bold(true).Pair("Net due", money.Plain(rc.NetDue)).Bold(false).
		Rule('=')

	return doc.Center().Line("Thank you").Feed(3).Cut().Bytes()
}
