package series

import (
	"time"

	"go.uber.org/zap"
)

// Result holds everything one pipeline run derives from its input
type Result struct {
	RawRows          int
	Series           *Series
	DominantInterval time.Duration
	Segments         []Segment
	Mean             float64
	SegmentMeans     []float64
	Summaries        []SegmentSummary
}

// Pipeline runs cleaning, interval profiling, segmentation and aggregation in
// order
type Pipeline struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewPipeline creates a pipeline. A nil logger discards output.
func NewPipeline(opts Options, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// Options returns the effective options of the pipeline
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run processes rows and returns the cleaned series with its derived
// interval, segments and means. The first error aborts the run; no partial
// result is returned.
func (p *Pipeline) Run(rows []Row) (*Result, error) {
	s, err := Clean(rows, p.opts)
	if err != nil {
		return nil, err
	}
	p.logger.Debugw("cleaned input", "raw_rows", len(rows), "readings", s.Len(),
		"duplicates_removed", len(rows)-s.Len())

	interval, err := DominantInterval(s, p.opts.Granularity)
	if err != nil {
		return nil, err
	}
	p.logger.Debugw("profiled intervals", "dominant_interval", interval)

	segments := Partition(s, interval, p.opts.Granularity)
	p.logger.Debugw("segmented series", "segments", len(segments))

	mean, err := Mean(s.Readings)
	if err != nil {
		return nil, err
	}
	means, err := SegmentMeans(s, segments)
	if err != nil {
		return nil, err
	}
	summaries, err := Summarize(s, segments)
	if err != nil {
		return nil, err
	}

	return &Result{
		RawRows:          len(rows),
		Series:           s,
		DominantInterval: interval,
		Segments:         segments,
		Mean:             mean,
		SegmentMeans:     means,
		Summaries:        summaries,
	}, nil
}
