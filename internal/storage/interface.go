// Package storage defines the persistence backends for cleaned series.
package storage

import (
	"context"

	"github.com/chrissnell/heartseries/internal/series"
)

// Batch is one cleaned series handed to the storage backends
type Batch struct {
	// RunID identifies the pipeline run that produced the series
	RunID string
	// Source names the raw input (file path or table) the series came from
	Source string
	Series *series.Series
}

// Header returns the field names of the batch's rows, taken from the first
// reading
func (b Batch) Header() []string {
	if b.Series.Len() == 0 {
		return nil
	}
	return b.Series.Readings[0].Row.Names()
}

// StorageEngineInterface is implemented by every backend that can persist a
// cleaned series
type StorageEngineInterface interface {
	Name() string
	StoreBatch(ctx context.Context, b Batch) error
	Close() error
}
