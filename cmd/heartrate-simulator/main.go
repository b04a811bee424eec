// Package main generates synthetic heart-rate recordings as CSV, with the
// duplicates, dropouts and out-of-order rows real device exports contain.
package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// HeartRateEmulator generates synthetic heart-rate readings.
type HeartRateEmulator struct {
	baseRate  float64
	interval  time.Duration
	startTime time.Time

	// DuplicateRate is the probability that a row is emitted twice
	DuplicateRate float64
	// DropoutRate is the probability that a sample is skipped, which
	// widens the gap to the next one
	DropoutRate float64
	// Shuffle emits rows in random order
	Shuffle bool

	rng *rand.Rand
}

func NewHeartRateEmulator(start time.Time, interval time.Duration, seed int64) *HeartRateEmulator {
	return &HeartRateEmulator{
		baseRate:  65,
		interval:  interval,
		startTime: start,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Generate returns n samples as timestamp/heart_rate records. Dropped
// samples do not count towards n.
func (e *HeartRateEmulator) Generate(n int) [][]string {
	records := make([][]string, 0, n)
	t := e.startTime
	for len(records) < n {
		if e.rng.Float64() < e.DropoutRate {
			t = t.Add(e.interval)
			continue
		}

		// Slow breathing-driven oscillation plus a little noise
		elapsed := t.Sub(e.startTime).Seconds()
		rate := e.baseRate + 4*math.Sin(2*math.Pi*elapsed/60) + (e.rng.Float64()-0.5)*3

		record := []string{t.Format(timestampLayout), strconv.Itoa(int(math.Round(rate)))}
		records = append(records, record)
		if e.rng.Float64() < e.DuplicateRate {
			records = append(records, record)
		}
		t = t.Add(e.interval)
	}

	if e.Shuffle {
		e.rng.Shuffle(len(records), func(i, j int) {
			records[i], records[j] = records[j], records[i]
		})
	}
	return records
}

// WriteCSV writes the header line and records to w
func WriteCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "heart_rate"}); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

func main() {
	var (
		count    = flag.Int("n", 120, "Number of samples to generate")
		interval = flag.Duration("interval", 5*time.Second, "Nominal sampling interval")
		start    = flag.String("start", "2024-03-01 08:00:00", "Timestamp of the first sample")
		dupRate  = flag.Float64("dup-rate", 0.05, "Probability that a row is duplicated")
		dropRate = flag.Float64("dropout-rate", 0.03, "Probability that a sample is dropped")
		shuffle  = flag.Bool("shuffle", true, "Emit rows in random order")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		out      = flag.String("out", "", "Output file (default stdout)")
	)
	flag.Parse()

	startTime, err := time.Parse(timestampLayout, *start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}

	emulator := NewHeartRateEmulator(startTime, *interval, *seed)
	emulator.DuplicateRate = *dupRate
	emulator.DropoutRate = *dropRate
	emulator.Shuffle = *shuffle

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("could not create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	if err := WriteCSV(w, emulator.Generate(*count)); err != nil {
		log.Fatalf("could not write CSV: %v", err)
	}
}
