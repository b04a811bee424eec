package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/chrissnell/heartseries/internal/storage/csvfile"
	"github.com/chrissnell/heartseries/internal/storage/sqlite"
	"github.com/chrissnell/heartseries/internal/storage/timescaledb"
	"github.com/chrissnell/heartseries/pkg/config"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	Engines []storage.StorageEngineInterface
}

// NewStorageManager creates a StorageManager object, populated with all configured storage engines
func NewStorageManager(ctx context.Context, c *config.StorageData) (*StorageManager, error) {
	var err error

	s := &StorageManager{}

	// Check the configuration for the supported storage backends and enable
	// them if found

	if c.CSV != nil && c.CSV.Enabled {
		err = s.AddEngine(ctx, "csv", c)
		if err != nil {
			return nil, fmt.Errorf("could not add CSV storage backend: %v", err)
		}
	}

	if c.SQLite != nil {
		err = s.AddEngine(ctx, "sqlite", c)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add SQLite storage backend: %v", err)
		}
	}

	if c.TimescaleDB != nil {
		err = s.AddEngine(ctx, "timescaledb", c)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not add TimescaleDB storage backend: %v", err)
		}
	}

	return s, nil
}

// AddEngine adds a new engine of name engineName to our StorageManager
func (s *StorageManager) AddEngine(ctx context.Context, engineName string, c *config.StorageData) error {
	var engine storage.StorageEngineInterface
	var err error

	switch engineName {
	case "csv":
		engine, err = csvfile.New(c.CSV.Path, log.Named("storage.csv"))
	case "sqlite":
		engine, err = sqlite.Open(c.SQLite.Path, c.SQLite.Table, log.Named("storage.sqlite"))
	case "timescaledb":
		engine, err = timescaledb.New(ctx, c.TimescaleDB.ConnectionString, c.TimescaleDB.Table, log.Named("storage.timescaledb"))
	default:
		return fmt.Errorf("unknown storage engine %q", engineName)
	}
	if err != nil {
		return err
	}

	s.Engines = append(s.Engines, engine)
	return nil
}

// Store hands the batch to every engine in the order they were added. The
// first failure stops the fan-out and is returned annotated with the engine
// name.
func (s *StorageManager) Store(ctx context.Context, b storage.Batch) error {
	if len(s.Engines) == 0 {
		log.Debugf("no storage engines configured; cleaned series not persisted")
		return nil
	}
	for _, e := range s.Engines {
		if err := e.StoreBatch(ctx, b); err != nil {
			return fmt.Errorf("%s storage: %w", e.Name(), err)
		}
	}
	return nil
}

// Close closes every engine and returns the joined errors
func (s *StorageManager) Close() error {
	var errs []error
	for _, e := range s.Engines {
		if err := e.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s storage: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
