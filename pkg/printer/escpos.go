package printer

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	alignLeft   byte = 0
	alignCenter byte = 1
)

// Character sizes for GS !
const (
	SizeNormal byte = 0x00
	SizeDouble byte = 0x11
)

// Characters per line for common paper widths
const (
	Width58mm = 32
	Width80mm = 48
)

// Document accumulates an ESC/POS job. Methods chain.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a job with the printer reset. A width of zero means 58mm paper.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = Width58mm
	}
	d := &Document{width: width}
	d.cmd(ESC, '@')
	return d
}

func (d *Document) cmd(b ...byte) *Document {
	d.buf.Write(b)
	return d
}

// Center centers the following lines
func (d *Document) Center() *Document { return d.cmd(ESC, 'a', alignCenter) }

// Left left-aligns the following lines
func (d *Document) Left() *Document { return d.cmd(ESC, 'a', alignLeft) }

// Bold toggles emphasis
func (d *Document) Bold(on bool) *Document {
	if on {
		return d.cmd(ESC, 'E', 1)
	}
	return d.cmd(ESC, 'E', 0)
}

// Size sets the character size, e.g. SizeDouble
func (d *Document) Size(size byte) *Document { return d.cmd(GS, '!', size) }

// Line prints s and a line feed
func (d *Document) Line(s string) *Document {
	d.buf.WriteString(s)
	return d.cmd(LF)
}

// Rule prints a full-width line of ch
func (d *Document) Rule(ch rune) *Document {
	return d.Line(strings.Repeat(string(ch), d.width))
}

// Pair prints label on the left and value flush right.
// Widths are measured in runes so Bengali labels align.
func (d *Document) Pair(label, value string) *Document {
	gap := d.width - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	return d.Line(label + strings.Repeat(" ", gap) + value)
}

// Item prints "2x name" with the line total flush right, truncating the name to fit.
func (d *Document) Item(qty int, name, total string) *Document {
	label := []rune(strconv.Itoa(qty) + "x " + name)
	if room := d.width - utf8.RuneCountInString(total) - 1; room > 0 && len(label) > room {
		label = label[:room]
	}
	return d.Pair(string(label), total)
}

// Feed advances the paper n lines
func (d *Document) Feed(n int) *Document {
	for ; n > 0; n-- {
		d.cmd(LF)
	}
	return d
}

// Cut performs a partial cut
func (d *Document) Cut() *Document { return d.cmd(GS, 'V', 1) }

// Bytes returns the job
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
