package series

import (
	"errors"
	"strings"
	"time"
)

// timestampLayouts are the ISO-8601 forms accepted for the timestamp field,
// tried in order. A date/time separator of either 'T' or ' ' is accepted.
// Layouts without a zone yield naive times, which are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15",
	"2006-01-02",
}

var errUnrecognizedTimestamp = errors.New("not an ISO-8601 date or date-time")

// ParseTimestamp parses ISO-8601 text as produced by common exporters:
// "2024-03-01T08:00:00", "2024-03-01 08:00:00.250+01:00",
// "2024-03-01T08:00:00Z", or a bare date.
func ParseTimestamp(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnrecognizedTimestamp
}
