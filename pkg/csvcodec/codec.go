// Package csvcodec reads and writes the spreadsheet-friendly CSV files used for
// customer, product and transaction import/export.
//
// Files are UTF-8 with a leading byte-order mark, comma delimited, and text
// fields are always wrapped in double quotes.
package csvcodec

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// BOM is the UTF-8 byte-order mark written at the start of every file.
const BOM = "\uFEFF"

// Field is a single cell. Text fields are quoted on output, numeric fields are not.
type Field struct {
	Value  string
	Quoted bool
}

// Text creates a quoted text field
func Text(s string) Field {
	return Field{Value: s, Quoted: true}
}

// Number creates a bare numeric field
func Number(d decimal.Decimal) Field {
	return Field{Value: d.String()}
}

// Int creates a bare integer field
func Int(n int) Field {
	return Field{Value: decimal.NewFromInt(int64(n)).String()}
}

// Writer writes CSV rows with a BOM prefix.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a writer and emits the byte-order mark
func NewWriter(w io.Writer) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(BOM); err != nil {
		return nil, err
	}
	return &Writer{w: bw}, nil
}

// Header writes a row of quoted column names
func (w *Writer) Header(names ...string) error {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Text(n)
	}
	return w.Write(fields...)
}

// Write writes one row terminated by a newline
func (w *Writer) Write(fields ...Field) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		v := f.Value
		if f.Quoted {
			v = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		} else {
			v = strings.NewReplacer(",", "", "\n", "", "\r", "").Replace(v)
		}
		if _, err := w.w.WriteString(v); err != nil {
			return err
		}
	}
	return w.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// ReadRows returns the data rows of a CSV document. The BOM is stripped, the
// header row and blank rows are skipped and every field is trimmed. Rows the
// CSV parser rejects are counted in malformed rather than returned.
func ReadRows(r io.Reader) (rows [][]string, malformed int, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	data = bytes.TrimPrefix(data, []byte(BOM))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header := true
	for {
		record, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			var parseErr *csv.ParseError
			if errors.As(readErr, &parseErr) {
				if !header {
					malformed++
				}
				header = false
				continue
			}
			return nil, malformed, readErr
		}
		if header {
			header = false
			continue
		}
		if isBlank(record) {
			continue
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, record)
	}
	return rows, malformed, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// column returns the i-th field or "" when the row is shorter.
func column(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// parseAmount parses a money column. Empty input yields zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
