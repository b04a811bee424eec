package timescaledb

import (
	"context"
	"fmt"

	"github.com/chrissnell/heartseries/internal/database"
	"github.com/chrissnell/heartseries/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// insertBatchSize bounds the number of rows per INSERT statement
const insertBatchSize = 500

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB
	table           string
	logger          *zap.SugaredLogger
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString, table string, logger *zap.SugaredLogger) (*Storage, error) {
	conn, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}
	return NewWithDB(ctx, conn, table, logger)
}

// NewWithDB sets up the backend on an existing GORM connection and makes
// sure the table, its hypertable and its indexes exist
func NewWithDB(ctx context.Context, conn *gorm.DB, table string, logger *zap.SugaredLogger) (*Storage, error) {
	t := &Storage{
		TimescaleDBConn: conn,
		table:           table,
		logger:          logger,
	}

	logger.Info("creating database table...")
	if err := t.db(ctx).AutoMigrate(&database.CleanedReading{}); err != nil {
		logger.Warn("warning: could not create table in database")
		return nil, fmt.Errorf("could not migrate %s: %w", table, err)
	}

	// The hypertable needs the TimescaleDB extension, which a plain
	// PostgreSQL server may not have. Without it readings still land in an
	// ordinary table.
	logger.Info("creating hypertable...")
	if err := conn.WithContext(ctx).Exec(createHypertableSQL, table).Error; err != nil {
		logger.Warnf("could not create hypertable on %s, continuing with a plain table: %v", table, err)
	}

	return t, nil
}

func (t *Storage) db(ctx context.Context) *gorm.DB {
	return t.TimescaleDBConn.WithContext(ctx).Table(t.table)
}

// Name identifies the backend in logs and errors
func (t *Storage) Name() string {
	return "timescaledb"
}

// StoreBatch replaces the readings previously stored for the batch's source
// with the batch, in one transaction
func (t *Storage) StoreBatch(ctx context.Context, b storage.Batch) error {
	models, err := database.NewCleanedReadings(b.RunID, b.Source, b.Series)
	if err != nil {
		return fmt.Errorf("could not convert readings: %w", err)
	}

	err = t.TimescaleDBConn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(t.table).Where("source = ?", b.Source).Delete(&database.CleanedReading{}).Error; err != nil {
			return fmt.Errorf("could not delete previous readings: %w", err)
		}
		if err := tx.Table(t.table).CreateInBatches(models, insertBatchSize).Error; err != nil {
			return fmt.Errorf("could not store readings: %w", err)
		}
		return nil
	})
	if err != nil {
		t.logger.Error("could not store readings:", err)
		return err
	}

	t.logger.Infow("stored cleaned readings", "run_id", b.RunID, "source", b.Source,
		"readings", len(models), "table", t.table)
	return nil
}

// Close closes the underlying connection pool
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
