package series

import (
	"time"
)

// Partition splits s into maximal runs whose internal gaps all equal
// reference. A new run starts at every reading whose gap to its predecessor
// differs from reference, compared exactly after truncation to granularity.
// The runs are contiguous and cover s in order; an empty series yields no
// runs and a single reading yields one run of length one.
func Partition(s *Series, reference, granularity time.Duration) []Segment {
	n := s.Len()
	if n == 0 {
		return nil
	}
	if granularity <= 0 {
		granularity = time.Second
	}

	var segments []Segment
	start := 0
	for i := 1; i < n; i++ {
		if gap(s.Readings[i-1], s.Readings[i], granularity) != reference {
			segments = append(segments, Segment{Start: start, End: i})
			start = i
		}
	}
	return append(segments, Segment{Start: start, End: n})
}
