package services

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"catalog/internal/models"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrShortRow        = errors.New("row has fewer columns than the header")
	ErrMalformedCSV    = errors.New("malformed csv")
)

// ImportError reports why a CSV import stopped. Row is the 1-based CSV
// record number (the header is row 1); Column is set when the problem is
// tied to a single header name.
type ImportError struct {
	Row    int
	Column string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("csv row %d, column %q: %v", e.Row, e.Column, e.Err)
	}
	return fmt.Sprintf("csv row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

type columnSetter func(p *models.Product, value string)

// productColumns maps each importable column to the attribute it sets.
var productColumns = map[string]columnSetter{
	"name":          func(p *models.Product, v string) { p.Name = v },
	"price":         func(p *models.Product, v string) { p.Price = v },
	"description":   func(p *models.Product, v string) { p.Description = v },
	"stockQuantity": func(p *models.Product, v string) { p.StockQuantity = v },
	"weight":        func(p *models.Product, v string) { p.Weight = v },
}

// rowMapper applies a parsed header to data rows.
type rowMapper struct {
	header  []string
	setters []columnSetter
}

// newRowMapper resolves every header name to a setter. Only the first
// letter is case-insensitive ("name" and "Name" match, "NAME" does not).
func newRowMapper(header []string) (*rowMapper, error) {
	m := &rowMapper{
		header:  header,
		setters: make([]columnSetter, len(header)),
	}
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		key := lowerFirst(name)
		setter, ok := productColumns[key]
		if !ok {
			return nil, &ImportError{Row: 1, Column: name, Err: ErrUnknownColumn}
		}
		if seen[key] {
			return nil, &ImportError{Row: 1, Column: name, Err: ErrDuplicateColumn}
		}
		seen[key] = true
		m.setters[i] = setter
	}
	return m, nil
}

// build creates a new product from record. row is used for error reporting.
func (m *rowMapper) build(row int, record []string) (*models.Product, error) {
	if len(record) < len(m.header) {
		return nil, &ImportError{
			Row: row,
			Err: fmt.Errorf("%w: got %d, want %d", ErrShortRow, len(record), len(m.header)),
		}
	}
	p := &models.Product{}
	for i, set := range m.setters {
		set(p, record[i])
	}
	return p, nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
