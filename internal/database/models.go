package database

import (
	"encoding/json"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
)

// CleanedReading is one row of a cleaned series as stored in PostgreSQL. The
// full source row is kept as a JSON array of name/value pairs in column order,
// so no input column is lost or reordered. The key
// includes time so the table can be turned into a hypertable.
type CleanedReading struct {
	Source string    `gorm:"primaryKey;column:source"`
	Seq    int       `gorm:"primaryKey;column:seq;autoIncrement:false"`
	Time   time.Time `gorm:"primaryKey;column:time"`
	RunID  string    `gorm:"column:run_id;not null;index"`
	Value  string    `gorm:"column:value"`
	Row    string    `gorm:"column:row;type:jsonb"`
}

// TableName specifies the default table name for CleanedReading
func (CleanedReading) TableName() string {
	return "cleaned_readings"
}

// NewCleanedReadings converts a series into storable rows in series order
func NewCleanedReadings(runID, source string, s *series.Series) ([]CleanedReading, error) {
	out := make([]CleanedReading, s.Len())
	for i, r := range s.Readings {
		row, err := json.Marshal(r.Row)
		if err != nil {
			return nil, err
		}
		out[i] = CleanedReading{
			RunID:  runID,
			Source: source,
			Seq:    i,
			Time:   r.Timestamp,
			Value:  r.Value,
			Row:    string(row),
		}
	}
	return out, nil
}
