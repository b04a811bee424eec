package report

import (
	"fmt"
	"io"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1024
	chartHeight = 400
)

func segmentStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// WriteChart renders the series as a PNG line chart with one colored line
// per segment and a dashed line at the overall mean. Segments are
// distinguished by color only; there is no legend. The series must span at
// least two distinct timestamps.
func WriteChart(w io.Writer, r *series.Result) error {
	if r.Series.Len() < 2 {
		return &series.InsufficientDataError{Stage: "chart", Need: 2, Got: r.Series.Len()}
	}
	first := r.Series.Readings[0].Timestamp
	last := r.Series.Readings[r.Series.Len()-1].Timestamp
	if !last.After(first) {
		return &series.InsufficientDataError{Stage: "chart", Need: 2, Got: 1}
	}

	var lines []chart.Series
	for i, seg := range r.Segments {
		readings := r.Series.Slice(seg)
		ys, err := series.Values(readings)
		if err != nil {
			return err
		}
		line := chart.TimeSeries{
			Name:    fmt.Sprintf("segment %d", i+1),
			Style:   segmentStyle(chart.GetDefaultColor(i)),
			YValues: ys,
		}
		for _, rd := range readings {
			line.XValues = append(line.XValues, rd.Timestamp)
		}
		lines = append(lines, line)
	}

	lines = append(lines, chart.TimeSeries{
		Name: "mean",
		Style: chart.Style{
			StrokeColor:     drawing.ColorRed,
			StrokeWidth:     1,
			StrokeDashArray: []float64{5, 5},
		},
		XValues: []time.Time{first, last},
		YValues: []float64{r.Mean, r.Mean},
	})

	ch := chart.Chart{
		Title:      fmt.Sprintf("Heart rate: mean %.2f, %d segments at %s", r.Mean, len(r.Segments), r.DominantInterval),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "time", ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05")},
		YAxis:      chart.YAxis{Name: "beats/minute"},
		Series:     lines,
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("could not render chart: %w", err)
	}
	return nil
}
