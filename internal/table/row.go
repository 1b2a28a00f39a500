package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one loaded CSV record addressed by column name
type Row struct {
	index  map[string]int
	fields []string
	line   int
}

// NewRow builds a row from parallel column and field slices
func NewRow(columns, fields []string) Row {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		index[col] = i
	}
	return Row{index: index, fields: fields}
}

// Line is the 1-based line the row started on, or 0 if unknown
func (r Row) Line() int {
	return r.line
}

// Has reports whether the row has the column
func (r Row) Has(col string) bool {
	i, ok := r.index[col]
	return ok && i < len(r.fields)
}

// String returns the raw field, or "" for unknown columns
func (r Row) String(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// Value returns the field coerced to int64 or float64 when it looks
// numeric, and the raw string otherwise.
func (r Row) Value(col string) any {
	s := strings.TrimSpace(r.String(col))
	if !looksNumeric(s) {
		return r.String(col)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return r.String(col)
}

// Int parses the field as an integer. Empty fields are 0.
// Values written as floats ("3.0") are truncated.
func (r Row) Int(col string) (int, error) {
	s := strings.TrimSpace(r.String(col))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", col, s)
	}
	return int(f), nil
}

// Float parses the field as a float. Empty fields are 0.
func (r Row) Float(col string) (float64, error) {
	s := strings.TrimSpace(r.String(col))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not a number", col, s)
	}
	return f, nil
}

// OptFloat parses the field as a float, returning nil for empty fields
func (r Row) OptFloat(col string) (*float64, error) {
	s := strings.TrimSpace(r.String(col))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %q is not a number", col, s)
	}
	return &f, nil
}

// FormatFloat renders a float the way the tables store it
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatOptFloat renders nil as an empty field
func FormatOptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return FormatFloat(*f)
}

// looksNumeric accepts optionally signed decimal numbers with an optional
// fraction and exponent. strconv alone would also accept "NaN" and "Inf".
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; i < len(s) && isDigit(s[i]); i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
