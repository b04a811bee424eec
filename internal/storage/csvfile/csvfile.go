// Package csvfile writes cleaned series back out as CSV in the input row shape.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/heartseries/internal/storage"
	"go.uber.org/zap"
)

// Storage writes each batch to a CSV file, replacing any previous content
type Storage struct {
	path   string
	logger *zap.SugaredLogger
}

// New sets up a CSV storage backend writing to path
func New(path string, logger *zap.SugaredLogger) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("csv storage requires a path")
	}
	return &Storage{path: path, logger: logger}, nil
}

// Name identifies the backend in logs and errors
func (c *Storage) Name() string {
	return "csv"
}

// StoreBatch writes the batch to a temporary file and renames it into place
// so readers never observe a partial file
func (c *Storage) StoreBatch(ctx context.Context, b storage.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %s: %w", c.path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, b); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write %s: %w", c.path, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("could not move cleaned data into %s: %w", c.path, err)
	}

	c.logger.Infof("cleaned data has been saved to %s (%d readings)", c.path, b.Series.Len())
	return nil
}

// Write encodes the batch as CSV: the header of the first reading followed
// by one line per reading in series order
func Write(w io.Writer, b storage.Batch) error {
	header := b.Header()
	if header == nil {
		return fmt.Errorf("no readings to write")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range b.Series.Readings {
		record := make([]string, len(header))
		for i, name := range header {
			record[i], _ = r.Row.Get(name)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Close is a no-op; files are closed after every batch
func (c *Storage) Close() error {
	return nil
}
