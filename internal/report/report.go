// Package report renders a pipeline result for people (text) or programs
// (json, msgpack).
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/pkg/responseformat"
)

// FormatText selects the console rendering
const FormatText = "text"

// Report is the serializable summary of one pipeline run
type Report struct {
	RunID                   string          `json:"run_id,omitempty"`
	RawRows                 int             `json:"raw_rows"`
	Readings                int             `json:"readings"`
	DuplicatesRemoved       int             `json:"duplicates_removed"`
	DominantIntervalSeconds float64         `json:"dominant_interval_seconds"`
	Segments                []SegmentReport `json:"segments"`
	Mean                    float64         `json:"mean"`
	SegmentMeans            []float64       `json:"segment_means"`
}

type SegmentReport struct {
	Start  int       `json:"start"`
	End    int       `json:"end"`
	Count  int       `json:"count"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Mean   float64   `json:"mean"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	StdDev float64   `json:"stddev"`
}

// Build converts a pipeline result into a Report
func Build(runID string, r *series.Result) Report {
	rep := Report{
		RunID:                   runID,
		RawRows:                 r.RawRows,
		Readings:                r.Series.Len(),
		DuplicatesRemoved:       r.RawRows - r.Series.Len(),
		DominantIntervalSeconds: r.DominantInterval.Seconds(),
		Segments:                make([]SegmentReport, len(r.Summaries)),
		Mean:                    r.Mean,
		SegmentMeans:            r.SegmentMeans,
	}
	for i, s := range r.Summaries {
		rep.Segments[i] = SegmentReport{
			Start:  s.Start,
			End:    s.End,
			Count:  s.Count,
			From:   s.From,
			To:     s.To,
			Mean:   s.Mean,
			Min:    s.Min,
			Max:    s.Max,
			StdDev: s.StdDev,
		}
	}
	return rep
}

// Write renders rep in format: "text", "json" or "msgpack"
func Write(w io.Writer, format string, rep Report) error {
	if format == FormatText || format == "" {
		return writeText(w, rep)
	}
	f, err := responseformat.ParseFormat(format)
	if err != nil {
		return err
	}
	return responseformat.Encode(w, f, rep)
}

func writeText(w io.Writer, rep Report) error {
	bounds := make([]string, len(rep.Segments))
	for i, s := range rep.Segments {
		bounds[i] = fmt.Sprintf("(%d, %d)", s.Start, s.End)
	}
	means := make([]string, len(rep.SegmentMeans))
	for i, m := range rep.SegmentMeans {
		means[i] = strconv.FormatFloat(m, 'f', -1, 64)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Most common interval (seconds): %s\n", strconv.FormatFloat(rep.DominantIntervalSeconds, 'f', -1, 64))
	fmt.Fprintf(&b, "Segments with homogeneous intervals (seconds): [%s]\n", strings.Join(bounds, ", "))
	fmt.Fprintf(&b, "Average heart rate across all segments: %.2f\n", rep.Mean)
	fmt.Fprintf(&b, "Average heart rate in each segment: [%s]\n", strings.Join(means, ", "))
	fmt.Fprintf(&b, "Readings: %d of %d rows (%d duplicates removed)\n", rep.Readings, rep.RawRows, rep.DuplicatesRemoved)

	_, err := io.WriteString(w, b.String())
	return err
}
