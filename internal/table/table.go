// Package table reads and writes collections of uniform records as CSV files.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Schema maps a record type to and from a CSV row
type Schema[T any] interface {
	Columns() []string
	Encode(v T) []string
	Decode(r Row) (T, error)
}

// LoadRows reads every well-formed row of a CSV file.
// A missing file yields no rows and no error.
func LoadRows(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return readRows(path, f)
}

func readRows(path string, src io.Reader) ([]Row, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1 // field counts are checked against the header below

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}

	var rows []Row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Printf("[table] %s line %d: skipping unreadable row: %v", path, parseErr.StartLine, parseErr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		line, _ := r.FieldPos(0)
		if len(fields) != len(header) {
			log.Printf("[table] %s line %d: expected %d fields, got %d; skipping row", path, line, len(header), len(fields))
			continue
		}

		rows = append(rows, Row{index: index, fields: fields, line: line})
	}

	return rows, nil
}

// Load reads a CSV file into typed records. Rows the schema cannot decode
// are logged and skipped.
func Load[T any](path string, schema Schema[T]) ([]T, error) {
	rows, err := LoadRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := schema.Decode(row)
		if err != nil {
			log.Printf("[table] %s line %d: skipping row: %v", path, row.Line(), err)
			continue
		}
		records = append(records, v)
	}

	return records, nil
}

// Save replaces the file at path with a header and one line per record.
// Saving no records leaves any existing file untouched.
func Save[T any](path string, schema Schema[T], records []T) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create table dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	w := csv.NewWriter(tmp)
	if err := w.Write(schema.Columns()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(schema.Encode(rec)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
