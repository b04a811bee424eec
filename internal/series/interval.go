package series

import (
	"time"
)

// Gaps returns the len(s)-1 durations between time-adjacent readings, each
// truncated to granularity. Sub-granularity remainders are dropped, so with a
// one-second granularity 4.9s and 4.0s both count as 4s.
func Gaps(s *Series, granularity time.Duration) []time.Duration {
	if s.Len() < 2 {
		return nil
	}
	if granularity <= 0 {
		granularity = time.Second
	}
	gaps := make([]time.Duration, s.Len()-1)
	for i := 1; i < s.Len(); i++ {
		gaps[i-1] = gap(s.Readings[i-1], s.Readings[i], granularity)
	}
	return gaps
}

func gap(prev, cur Reading, granularity time.Duration) time.Duration {
	return cur.Timestamp.Sub(prev.Timestamp).Truncate(granularity)
}

// DominantInterval returns the most frequent gap in s. When several gaps are
// equally frequent the smallest one wins.
func DominantInterval(s *Series, granularity time.Duration) (time.Duration, error) {
	if s.Len() < 2 {
		return 0, &InsufficientDataError{Stage: "interval profiler", Need: 2, Got: s.Len()}
	}

	counts := make(map[time.Duration]int)
	for _, g := range Gaps(s, granularity) {
		counts[g]++
	}

	var mode time.Duration
	best := 0
	for g, n := range counts {
		if n > best || (n == best && g < mode) {
			mode, best = g, n
		}
	}
	return mode, nil
}
