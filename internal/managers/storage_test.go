package managers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/chrissnell/heartseries/pkg/config"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	name   string
	err    error
	stored []storage.Batch
	closed bool
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) StoreBatch(_ context.Context, b storage.Batch) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, b)
	return nil
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

func batch(t *testing.T) storage.Batch {
	t.Helper()
	s, err := series.Clean([]series.Row{
		series.NewRow([]string{"timestamp", "heart_rate"}, []string{"2024-03-01T08:00:00", "60"}),
	}, series.DefaultOptions())
	require.NoError(t, err)
	return storage.Batch{RunID: "run", Source: "in.csv", Series: s}
}

func TestStoreFansOutInOrder(t *testing.T) {
	a, b := &fakeEngine{name: "a"}, &fakeEngine{name: "b"}
	m := &StorageManager{Engines: []storage.StorageEngineInterface{a, b}}

	require.NoError(t, m.Store(context.Background(), batch(t)))
	require.Len(t, a.stored, 1)
	require.Len(t, b.stored, 1)

	require.NoError(t, m.Close())
	require.True(t, a.closed)
	require.True(t, b.closed)
}

func TestStoreStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("disk full")
	a, b := &fakeEngine{name: "a", err: boom}, &fakeEngine{name: "b"}
	m := &StorageManager{Engines: []storage.StorageEngineInterface{a, b}}

	err := m.Store(context.Background(), batch(t))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "a storage")
	require.Empty(t, b.stored)
}

func TestNewStorageManagerFromConfig(t *testing.T) {
	dir := t.TempDir()
	m, err := NewStorageManager(context.Background(), &config.StorageData{
		CSV:    &config.CSVData{Enabled: true, Path: filepath.Join(dir, "out_cleaned.csv")},
		SQLite: &config.SQLiteData{Path: filepath.Join(dir, "out.db"), Table: "cleaned_readings"},
	})
	require.NoError(t, err)
	defer m.Close()
	require.Len(t, m.Engines, 2)
	require.Equal(t, "csv", m.Engines[0].Name())
	require.Equal(t, "sqlite", m.Engines[1].Name())

	require.NoError(t, m.Store(context.Background(), batch(t)))

	empty, err := NewStorageManager(context.Background(), &config.StorageData{CSV: &config.CSVData{Enabled: false}})
	require.NoError(t, err)
	require.Empty(t, empty.Engines)
	require.NoError(t, empty.Store(context.Background(), batch(t)))
}
