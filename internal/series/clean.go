package series

import (
	"sort"
)

// Clean removes exact-duplicate rows and orders the survivors by timestamp.
//
// Rows are duplicates only when they are Equal readings; rows that merely
// share a timestamp are handled by opts.DuplicateTimestamps. Ties are ordered by their
// first appearance in rows. Value text is carried through unparsed.
func Clean(rows []Row, opts Options) (*Series, error) {
	if len(rows) == 0 {
		return nil, EmptyInputError{}
	}
	opts = opts.withDefaults()

	// readings indexed by instant, for the equality check
	seen := make(map[int64][]int, len(rows))
	readings := make([]Reading, 0, len(rows))
	for i, row := range rows {
		text, ok := row.Get(opts.TimestampField)
		if !ok {
			return nil, &MalformedTimestampError{Index: i, Err: errMissingField(opts.TimestampField)}
		}
		ts, err := ParseTimestamp(text)
		if err != nil {
			return nil, &MalformedTimestampError{Index: i, Text: text, Err: err}
		}

		rd := Reading{
			Timestamp:      ts,
			Value:          opts.valueOf(row),
			Row:            row,
			Index:          i,
			timestampField: opts.TimestampField,
		}
		if isDuplicate(readings, seen[ts.UnixNano()], rd) {
			continue
		}
		seen[ts.UnixNano()] = append(seen[ts.UnixNano()], len(readings))
		readings = append(readings, rd)
	}

	sort.SliceStable(readings, func(a, b int) bool {
		return readings[a].Timestamp.Before(readings[b].Timestamp)
	})

	readings, err := resolveTies(readings, opts.DuplicateTimestamps)
	if err != nil {
		return nil, err
	}

	return &Series{Readings: readings}, nil
}

func isDuplicate(readings []Reading, candidates []int, rd Reading) bool {
	for _, j := range candidates {
		if readings[j].Equal(rd) {
			return true
		}
	}
	return false
}

// resolveTies applies the duplicate-timestamp policy to a sorted slice
func resolveTies(readings []Reading, policy DuplicateTimestampPolicy) ([]Reading, error) {
	if policy == DuplicateTimestampsKeep {
		return readings, nil
	}

	out := make([]Reading, 0, len(readings))
	for i, r := range readings {
		if i > 0 && r.Timestamp.Equal(readings[i-1].Timestamp) {
			if policy == DuplicateTimestampsReject {
				return nil, &ConflictingReadingError{First: readings[i-1], Second: r}
			}
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type errMissingField string

func (e errMissingField) Error() string {
	return "missing field " + string(e)
}
