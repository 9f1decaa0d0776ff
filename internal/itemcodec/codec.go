// Package itemcodec reads and writes the compact item-list encoding used to
// store order items and to compare an order against its edit snapshot.
//
// One item is written as
//
//	Name (note) xQuantity [UnitPrice]
//
// and items are joined with ", ". Commas inside parentheses or brackets do
// not separate items.
package itemcodec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const separator = ", "

var qtySuffix = regexp.MustCompile(`^(.+?)\s+[xX](\d+)$`)

// Entry is a single decoded item line.
type Entry struct {
	Name     string
	Note     string
	Quantity int
	Price    decimal.Decimal
	HasPrice bool // false when the line carried no [price] tag
}

// Encode writes entries in the item-list encoding.
func Encode(entries []Entry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, encodeEntry(e))
	}
	return strings.Join(parts, separator)
}

func encodeEntry(e Entry) string {
	var b strings.Builder
	b.WriteString(JoinNote(e.Name, e.Note))

	qty := e.Quantity
	if qty <= 0 {
		qty = 1
	}
	fmt.Fprintf(&b, " x%d", qty)

	if e.HasPrice {
		fmt.Fprintf(&b, " [%s]", e.Price.StringFixed(2))
	}
	return b.String()
}

// Parse decodes an item list. It never fails: a line without a quantity
// suffix counts as one unit, a line without a price tag has a zero price,
// and empty segments are dropped.
func Parse(encoded string) []Entry {
	var entries []Entry
	for _, seg := range splitTopLevel(encoded) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		entries = append(entries, parseEntry(seg))
	}
	return entries
}

// splitTopLevel splits on commas that are not nested in () or [].
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// parseEntry peels the price tag, the quantity and the note off the end of
// a segment, in that order.
func parseEntry(seg string) Entry {
	e := Entry{Quantity: 1}
	rest := seg

	if strings.HasSuffix(rest, "]") {
		if open := strings.LastIndexByte(rest, '['); open >= 0 {
			raw := strings.TrimSpace(rest[open+1 : len(rest)-1])
			if p, err := decimal.NewFromString(raw); err == nil {
				e.Price = p
				e.HasPrice = true
				rest = strings.TrimSpace(rest[:open])
			}
		}
	}

	if m := qtySuffix.FindStringSubmatch(rest); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			e.Quantity = n
			rest = m[1]
		}
	}

	e.Name, e.Note = SplitNote(rest)
	return e
}

// SplitNote separates a trailing parenthetical from a display name:
// "6 alitas (extra salsa)" becomes ("6 alitas", "extra salsa").
// Names without a trailing parenthetical come back unchanged.
func SplitNote(name string) (base, note string) {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ")") {
		return name, ""
	}

	depth := 0
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				base = strings.TrimSpace(name[:i])
				if base == "" {
					return name, ""
				}
				return base, strings.TrimSpace(name[i+1 : len(name)-1])
			}
		}
	}
	return name, ""
}

// JoinNote is the inverse of SplitNote.
func JoinNote(name, note string) string {
	if note == "" {
		return name
	}
	return name + " (" + note + ")"
}

// ValidName reports whether name survives an Encode/Parse round trip as a
// name. Commas, brackets and parentheses would be read back as item
// separators, price tags or notes.
func ValidName(name string) bool {
	return !strings.ContainsAny(name, ",()[]")
}

// ValidNote reports whether note survives an Encode/Parse round trip. Notes
// are written inside parentheses, so commas are safe but nested brackets
// and parentheses are not.
func ValidNote(note string) bool {
	return !strings.ContainsAny(note, "()[]")
}
