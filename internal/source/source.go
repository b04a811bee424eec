// Package source loads raw reading rows from external media.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chrissnell/heartseries/internal/series"
)

// Source yields the raw rows of one recording
type Source interface {
	Rows(ctx context.Context) ([]series.Row, error)
}

// CSVSource reads rows from a CSV file with a header line
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the CSV file at path
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Rows reads the whole file
func (c *CSVSource) Rows(ctx context.Context) ([]series.Row, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", c.path, err)
	}
	defer f.Close()

	rows, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return rows, nil
}

// ReadCSV parses a header line followed by data lines. Every data line must
// have as many fields as the header. A file with only a header yields no rows.
func ReadCSV(ctx context.Context, r io.Reader) ([]series.Row, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}
	// Strip a UTF-8 byte order mark left by spreadsheet exports
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []series.Row
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read CSV row: %w", err)
		}
		rows = append(rows, series.NewRow(header, record))
	}
	return rows, nil
}
