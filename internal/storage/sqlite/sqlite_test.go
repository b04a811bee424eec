package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestStoreBatchAndReadBack(t *testing.T) {
	ctx := context.Background()
	header := []string{"timestamp", "heart_rate", "note \"quoted\""}
	raw := []series.Row{
		series.NewRow(header, []string{"2024-03-01T08:00:05", "62", "b"}),
		series.NewRow(header, []string{"2024-03-01T08:00:00", "60", "a"}),
		series.NewRow(header, []string{"2024-03-01T08:00:05", "62", "b"}),
	}
	s, err := series.Clean(raw, series.DefaultOptions())
	require.NoError(t, err)

	st, err := Open(filepath.Join(t.TempDir(), "readings.db"), "cleaned readings", log.Nop())
	require.NoError(t, err)
	defer st.Close()
	require.Equal(t, "sqlite", st.Name())

	// storing twice replaces the table contents
	require.NoError(t, st.StoreBatch(ctx, storage.Batch{RunID: "one", Series: s}))
	require.NoError(t, st.StoreBatch(ctx, storage.Batch{RunID: "two", Series: s}))

	rows, err := st.Rows(ctx)
	require.NoError(t, err)
	require.Equal(t, s.Rows(), rows)

	again, err := series.Clean(rows, series.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, s.Rows(), again.Rows())
}

func TestRowsMissingTable(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "empty.db"), "heart_rate_readings", log.Nop())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Rows(context.Background())
	require.Error(t, err)
}

func TestRowsRendersNonTextColumns(t *testing.T) {
	ctx := context.Background()
	st, err := Open(filepath.Join(t.TempDir(), "typed.db"), "heart_rate_readings", log.Nop())
	require.NoError(t, err)
	defer st.Close()

	_, err = st.db.ExecContext(ctx, `CREATE TABLE heart_rate_readings (timestamp TEXT, heart_rate INTEGER)`)
	require.NoError(t, err)
	_, err = st.db.ExecContext(ctx, `INSERT INTO heart_rate_readings VALUES ('2024-03-01T08:00:00', 60), ('2024-03-01T08:00:05', NULL)`)
	require.NoError(t, err)

	rows, err := st.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	v, _ := rows[0].Get("heart_rate")
	require.Equal(t, "60", v)
	v, _ = rows[1].Get("heart_rate")
	require.Equal(t, "", v)
}
