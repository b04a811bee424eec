package csvfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/stretchr/testify/require"
)

func cleaned(t *testing.T) *series.Series {
	t.Helper()
	header := []string{"timestamp", "heart_rate"}
	rows := []series.Row{
		series.NewRow(header, []string{"2024-03-01T08:00:10", "64"}),
		series.NewRow(header, []string{"2024-03-01T08:00:00", "60"}),
		series.NewRow(header, []string{"2024-03-01T08:00:05", "62"}),
		series.NewRow(header, []string{"2024-03-01T08:00:00", "60"}),
	}
	s, err := series.Clean(rows, series.DefaultOptions())
	require.NoError(t, err)
	return s
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, storage.Batch{Series: cleaned(t)}))
	require.Equal(t,
		"timestamp,heart_rate\n"+
			"2024-03-01T08:00:00,60\n"+
			"2024-03-01T08:00:05,62\n"+
			"2024-03-01T08:00:10,64\n",
		buf.String())

	require.Error(t, Write(&buf, storage.Batch{Series: &series.Series{}}))
}

func TestStoreBatchReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heart_rate_readings_cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	st, err := New(path, log.Nop())
	require.NoError(t, err)
	require.Equal(t, "csv", st.Name())
	require.NoError(t, st.StoreBatch(context.Background(), storage.Batch{RunID: "r", Series: cleaned(t)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "2024-03-01T08:00:05,62")
	require.NotContains(t, string(data), "stale")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary file must be cleaned up")
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New("", log.Nop())
	require.Error(t, err)
}
