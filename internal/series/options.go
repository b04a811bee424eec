package series

import (
	"fmt"
	"time"
)

// DuplicateTimestampPolicy decides what happens to distinct rows that share a
// timestamp after exact duplicates have been removed
type DuplicateTimestampPolicy string

const (
	// DuplicateTimestampsKeep keeps every distinct row. Tied readings stay in
	// input order and the gap between them is zero.
	DuplicateTimestampsKeep DuplicateTimestampPolicy = "keep"
	// DuplicateTimestampsReject fails cleaning with a ConflictingReadingError
	DuplicateTimestampsReject DuplicateTimestampPolicy = "reject"
	// DuplicateTimestampsFirst keeps the earliest-arriving row for the timestamp
	DuplicateTimestampsFirst DuplicateTimestampPolicy = "first"
)

// ParseDuplicateTimestampPolicy converts a config string into a policy.
// The empty string selects DuplicateTimestampsKeep.
func ParseDuplicateTimestampPolicy(s string) (DuplicateTimestampPolicy, error) {
	switch DuplicateTimestampPolicy(s) {
	case "", DuplicateTimestampsKeep:
		return DuplicateTimestampsKeep, nil
	case DuplicateTimestampsReject:
		return DuplicateTimestampsReject, nil
	case DuplicateTimestampsFirst:
		return DuplicateTimestampsFirst, nil
	}
	return "", fmt.Errorf("unknown duplicate timestamp policy %q (want keep, reject or first)", s)
}

// Options control how raw rows are interpreted and how gaps are measured
type Options struct {
	// TimestampField names the column holding the reading time
	TimestampField string
	// ValueFields lists candidate value columns; the first one present in a
	// row is used
	ValueFields []string
	// Granularity is the unit gaps are truncated to before comparison
	Granularity time.Duration
	// DuplicateTimestamps resolves distinct rows sharing a timestamp
	DuplicateTimestamps DuplicateTimestampPolicy
}

// DefaultOptions matches the layout of the heart-rate CSV exports: a
// "timestamp" column, a "heart_rate" (or generic "value") column and
// whole-second gaps.
func DefaultOptions() Options {
	return Options{
		TimestampField:      "timestamp",
		ValueFields:         []string{"heart_rate", "value"},
		Granularity:         time.Second,
		DuplicateTimestamps: DuplicateTimestampsKeep,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TimestampField == "" {
		o.TimestampField = d.TimestampField
	}
	if len(o.ValueFields) == 0 {
		o.ValueFields = d.ValueFields
	}
	if o.Granularity <= 0 {
		o.Granularity = d.Granularity
	}
	if o.DuplicateTimestamps == "" {
		o.DuplicateTimestamps = d.DuplicateTimestamps
	}
	return o
}

func (o Options) valueOf(r Row) string {
	for _, name := range o.ValueFields {
		if v, ok := r.Get(name); ok {
			return v
		}
	}
	return ""
}
