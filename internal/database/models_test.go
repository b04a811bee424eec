package database

import (
	"encoding/json"
	"testing"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/stretchr/testify/require"
)

func TestNewCleanedReadings(t *testing.T) {
	rows := []series.Row{
		series.NewRow([]string{"timestamp", "heart_rate", "device"}, []string{"2024-03-01T08:00:05", "62", "strap"}),
		series.NewRow([]string{"timestamp", "heart_rate", "device"}, []string{"2024-03-01T08:00:00", "60", "strap"}),
	}
	s, err := series.Clean(rows, series.DefaultOptions())
	require.NoError(t, err)

	models, err := NewCleanedReadings("run-1", "readings.csv", s)
	require.NoError(t, err)
	require.Len(t, models, 2)

	first := models[0]
	require.Equal(t, "run-1", first.RunID)
	require.Equal(t, "readings.csv", first.Source)
	require.Equal(t, 0, first.Seq)
	require.Equal(t, "60", first.Value)
	require.True(t, first.Time.Equal(s.Readings[0].Timestamp))

	var fields series.Row
	require.NoError(t, json.Unmarshal([]byte(first.Row), &fields))
	require.Equal(t, s.Readings[0].Row, fields)
	require.Equal(t, 1, models[1].Seq)
}

func TestNewCleanedReadingsKeepsColumnOrder(t *testing.T) {
	header := []string{"timestamp", "note", "heart_rate", "note"}
	rows := []series.Row{
		series.NewRow(header, []string{"2024-03-01T08:00:00", "b", "60", "a"}),
		series.NewRow(header, []string{"2024-03-01T08:00:05", "d", "62", "c"}),
	}
	s, err := series.Clean(rows, series.DefaultOptions())
	require.NoError(t, err)

	models, err := NewCleanedReadings("run-1", "readings.csv", s)
	require.NoError(t, err)
	require.JSONEq(t, `[
		{"name":"timestamp","value":"2024-03-01T08:00:00"},
		{"name":"note","value":"b"},
		{"name":"heart_rate","value":"60"},
		{"name":"note","value":"a"}
	]`, models[0].Row)
}
