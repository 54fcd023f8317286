// Package document renders invoices, payment receipts and customer
// statements as PDF.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/hisab-api/internal/domain/entity"
	"github.com/sangkips/hisab-api/pkg/currency"
	"github.com/shopspring/decimal"
)

const (
	pageMargin  = 15.0
	lineHeight  = 7.0
	utf8Family  = "doc"
	coreFamily  = "Helvetica"
	defaultRGB  = 0x4f46e5
	creatorName = "hisab-api"
)

// Image is an already-loaded logo
type Image struct {
	Data []byte
	// Type is "PNG" or "JPG".
	Type string
}

// StatementLine is one ledger entry with the balance after it
type StatementLine struct {
	Date      time.Time
	InvoiceNo string
	Kind      string
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Due       decimal.Decimal
	Balance   decimal.Decimal
}

// Statement is a customer's full ledger history
type Statement struct {
	Header   entity.ReceiptHeader
	Customer string
	Area     string
	Phone    string
	Lines    []StatementLine
	Closing  decimal.Decimal
	Printed  time.Time
}

// Renderer renders PDFs. With a font path set, text is drawn with that
// UTF-8 TrueType font; otherwise a core font with cp1252 translation is used.
type Renderer struct {
	fontPath string
	money    *currency.Formatter
}

// NewRenderer creates a PDF renderer
func NewRenderer(fontPath string, money *currency.Formatter) *Renderer {
	if money == nil {
		money = currency.NewFormatter("")
	}
	return &Renderer{fontPath: fontPath, money: money}
}

type page struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
	width  float64
}

func (r *Renderer) newPage(title string) *page {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator(creatorName, true)

	p := &page{pdf: pdf, family: coreFamily}
	if r.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", r.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.fontPath)
		p.family = utf8Family
		p.tr = func(s string) string { return s }
	} else {
		p.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	w, _ := pdf.GetPageSize()
	p.width = w - 2*pageMargin
	return p
}

func (p *page) font(style string, size float64) {
	p.pdf.SetFont(p.family, style, size)
}

func (p *page) cell(w float64, text, align string, fill bool) {
	p.pdf.CellFormat(w, lineHeight, p.tr(text), "", 0, align, fill, 0, "")
}

func (p *page) row(cols []float64, values []string, aligns string, border string, fill bool) {
	for i, w := range cols {
		align := "L"
		if i < len(aligns) {
			align = string(aligns[i])
		}
		p.pdf.CellFormat(w, lineHeight, p.tr(values[i]), border, 0, align, fill, 0, "")
	}
	p.pdf.Ln(-1)
}

// header draws the coloured store banner
func (p *page) header(h entity.ReceiptHeader, logo *Image) {
	r, g, b := ParseHexColor(h.Color)
	p.pdf.SetFillColor(r, g, b)
	p.pdf.Rect(0, 0, p.width+2*pageMargin, 32, "F")

	textX := pageMargin
	if logo != nil && len(logo.Data) > 0 {
		opts := fpdf.ImageOptions{ImageType: logo.Type, ReadDpi: false}
		p.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo.Data))
		if p.pdf.Ok() {
			p.pdf.ImageOptions("logo", pageMargin, 6, 0, 20, false, opts, 0, "")
			textX = pageMargin + 26
		} else {
			// An unreadable logo is not worth failing the document over.
			p.pdf.ClearError()
		}
	}

	p.pdf.SetTextColor(255, 255, 255)
	p.pdf.SetXY(textX, 7)
	p.font("B", 18)
	p.cell(0, h.StoreName, "L", false)
	p.pdf.Ln(8)
	p.pdf.SetX(textX)
	p.font("", 10)
	contact := strings.TrimSpace(strings.Join(nonEmpty(h.Address, h.Phone), "  |  "))
	p.cell(0, contact, "L", false)

	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.SetY(40)
}

func (p *page) keyValue(key, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	p.font(style, 11)
	labelW := p.width * 0.7
	p.cell(labelW, key, "R", false)
	p.cell(p.width-labelW, value, "R", false)
	p.pdf.Ln(-1)
}

func (p *page) output(w io.Writer) error {
	if err := p.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return p.pdf.Output(w)
}

// Invoice renders a sale invoice, or a payment receipt when the receipt has no items
func (r *Renderer) Invoice(w io.Writer, rc *entity.Receipt, logo *Image) error {
	p := r.newPage(rc.Title + " " + rc.InvoiceNo)
	p.header(rc.Header, logo)

	p.font("B", 14)
	p.cell(p.width/2, rc.Title, "L", false)
	p.font("", 10)
	p.cell(p.width/2, rc.InvoiceNo+"  |  "+rc.Date, "R", false)
	p.pdf.Ln(10)

	p.font("B", 11)
	p.cell(p.width, rc.Customer, "L", false)
	p.pdf.Ln(-1)
	p.font("", 10)
	if info := strings.Join(nonEmpty(rc.CustomerArea, rc.Phone), "  |  "); info != "" {
		p.cell(p.width, info, "L", false)
		p.pdf.Ln(-1)
	}
	p.pdf.Ln(4)

	if len(rc.Items) > 0 {
		cols := []float64{p.width * 0.46, p.width * 0.14, p.width * 0.2, p.width * 0.2}
		cr, cg, cb := ParseHexColor(rc.Header.Color)
		p.pdf.SetFillColor(cr, cg, cb)
		p.pdf.SetTextColor(255, 255, 255)
		p.font("B", 10)
		p.row(cols, []string{"Item", "Qty", "Unit price", "Total"}, "LRRR", "", true)
		p.pdf.SetTextColor(0, 0, 0)
		p.font("", 10)
		for _, it := range rc.Items {
			p.row(cols, []string{
				it.Name,
				strconv.Itoa(it.Quantity),
				r.money.Number(it.UnitPrice),
				r.money.Number(it.Total),
			}, "LRRR", "B", false)
		}
		p.pdf.Ln(4)
		p.keyValue("Total", r.money.Format(rc.Total), true)
	}

	p.keyValue("Paid", r.money.Format(rc.Paid), false)
	if len(rc.Items) > 0 {
		p.keyValue("Due on this bill", r.money.Format(rc.Due), false)
	}
	p.keyValue("Previous due", r.money.Format(rc.PreviousDue), false)
	p.keyValue("Net due", r.money.Format(rc.NetDue), true)

	if rc.Note != "" {
		p.pdf.Ln(6)
		p.font("", 9)
		p.pdf.MultiCell(p.width, 5, p.tr(rc.Note), "", "L", false)
	}
	return p.output(w)
}

// Statement renders a customer's ledger with a running balance
func (r *Renderer) Statement(w io.Writer, st *Statement) error {
	p := r.newPage("Statement " + st.Customer)
	p.header(st.Header, nil)

	p.font("B", 14)
	p.cell(p.width/2, "Statement", "L", false)
	p.font("", 10)
	printed := st.Printed
	if printed.IsZero() {
		printed = time.Now()
	}
	p.cell(p.width/2, printed.Format("2006-01-02"), "R", false)
	p.pdf.Ln(10)

	p.font("B", 11)
	p.cell(p.width, st.Customer, "L", false)
	p.pdf.Ln(-1)
	p.font("", 10)
	if info := strings.Join(nonEmpty(st.Area, st.Phone), "  |  "); info != "" {
		p.cell(p.width, info, "L", false)
		p.pdf.Ln(-1)
	}
	p.pdf.Ln(4)

	cols := []float64{p.width * 0.14, p.width * 0.18, p.width * 0.16, p.width * 0.13, p.width * 0.13, p.width * 0.13, p.width * 0.13}
	p.pdf.SetFillColor(230, 230, 240)
	p.font("B", 9)
	p.row(cols, []string{"Date", "Invoice", "Type", "Total", "Paid", "Due", "Balance"}, "LLLRRRR", "", true)
	p.font("", 9)
	for _, l := range st.Lines {
		p.row(cols, []string{
			l.Date.Format("2006-01-02"),
			l.InvoiceNo,
			l.Kind,
			r.money.Number(l.Total),
			r.money.Number(l.Paid),
			r.money.Number(l.Due),
			r.money.Number(l.Balance),
		}, "LLLRRRR", "B", false)
	}
	p.pdf.Ln(4)
	p.keyValue("Closing balance", r.money.Format(st.Closing), true)
	return p.output(w)
}

// ParseHexColor parses "#rrggbb" or "#rgb", falling back to the default accent
func ParseHexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		v = defaultRGB
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
