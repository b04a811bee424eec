package series

import (
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SegmentSummary describes one run of a partitioned series
type SegmentSummary struct {
	Segment
	Count  int       `json:"count" msgpack:"count"`
	From   time.Time `json:"from" msgpack:"from"`
	To     time.Time `json:"to" msgpack:"to"`
	Mean   float64   `json:"mean" msgpack:"mean"`
	Min    float64   `json:"min" msgpack:"min"`
	Max    float64   `json:"max" msgpack:"max"`
	StdDev float64   `json:"stddev" msgpack:"stddev"`
}

// ParseValue interprets a reading's value text as an integer
func ParseValue(r Reading) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(r.Value), 10, 64)
	if err != nil {
		return 0, &InvalidValueError{Reading: r, Err: err}
	}
	return v, nil
}

// Values parses every reading's value, failing on the first bad one
func Values(readings []Reading) ([]float64, error) {
	values := make([]float64, len(readings))
	for i, r := range readings {
		v, err := ParseValue(r)
		if err != nil {
			return nil, err
		}
		values[i] = float64(v)
	}
	return values, nil
}

// Mean returns the arithmetic mean of the readings' values
func Mean(readings []Reading) (float64, error) {
	if len(readings) == 0 {
		return 0, &InsufficientDataError{Stage: "aggregator", Need: 1, Got: 0}
	}
	values, err := Values(readings)
	if err != nil {
		return 0, err
	}
	return stat.Mean(values, nil), nil
}

// SegmentMeans returns the mean of each segment of s; result[i] belongs to
// segments[i]
func SegmentMeans(s *Series, segments []Segment) ([]float64, error) {
	means := make([]float64, len(segments))
	for i, seg := range segments {
		m, err := Mean(s.Slice(seg))
		if err != nil {
			return nil, err
		}
		means[i] = m
	}
	return means, nil
}

// Summarize computes descriptive statistics for each segment of s
func Summarize(s *Series, segments []Segment) ([]SegmentSummary, error) {
	summaries := make([]SegmentSummary, len(segments))
	for i, seg := range segments {
		readings := s.Slice(seg)
		if len(readings) == 0 {
			return nil, &InsufficientDataError{Stage: "aggregator", Need: 1, Got: 0}
		}
		values, err := Values(readings)
		if err != nil {
			return nil, err
		}
		summaries[i] = SegmentSummary{
			Segment: seg,
			Count:   len(values),
			From:    readings[0].Timestamp,
			To:      readings[len(readings)-1].Timestamp,
			Mean:    stat.Mean(values, nil),
			Min:     floats.Min(values),
			Max:     floats.Max(values),
			StdDev:  stat.PopStdDev(values, nil),
		}
	}
	return summaries, nil
}
