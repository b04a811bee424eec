package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/chrissnell/heartseries/internal/export/fhir"
	"github.com/chrissnell/heartseries/internal/log"
	"github.com/chrissnell/heartseries/internal/managers"
	"github.com/chrissnell/heartseries/internal/report"
	"github.com/chrissnell/heartseries/internal/series"
	"github.com/chrissnell/heartseries/internal/source"
	"github.com/chrissnell/heartseries/internal/storage"
	"github.com/chrissnell/heartseries/internal/storage/sqlite"
	"github.com/chrissnell/heartseries/pkg/config"
	"github.com/chrissnell/heartseries/pkg/responseformat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	out            io.Writer
	newRunID       func() string
}

// New creates a new application instance. Reports without a configured path
// go to stdout.
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
		out:            os.Stdout,
		newRunID:       func() string { return uuid.New().String() },
	}
}

// SetOutput redirects reports that have no configured path
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Run processes the configured input once: it loads the raw rows, runs the
// pipeline, persists the cleaned series, writes the FHIR export and prints
// the report. The first failure aborts the run.
func (a *App) Run(ctx context.Context) (*series.Result, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	runID := a.newRunID()
	logger := a.logger.With("run_id", runID)

	rows, err := a.loadRows(ctx, cfg.Input)
	if err != nil {
		return nil, err
	}
	logger.Infow("loaded input", "type", cfg.Input.Type, "source", sourceName(cfg.Input), "rows", len(rows))

	result, err := series.NewPipeline(opts, logger.Named("pipeline")).Run(rows)
	if err != nil {
		return nil, err
	}
	logger.Infow("pipeline finished", "readings", result.Series.Len(),
		"dominant_interval", result.DominantInterval, "segments", len(result.Segments))

	// Render the chart up front so a chart failure leaves no stored batch
	var chartPNG bytes.Buffer
	if cfg.Report.ChartPath != "" {
		if err := report.WriteChart(&chartPNG, result); err != nil {
			return nil, err
		}
	}

	storageManager, err := managers.NewStorageManager(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}
	defer storageManager.Close()

	batch := storage.Batch{RunID: runID, Source: sourceName(cfg.Input), Series: result.Series}
	if err := storageManager.Store(ctx, batch); err != nil {
		return nil, err
	}

	if cfg.Export.FHIR != nil {
		if err := a.exportFHIR(result.Series, cfg.Export.FHIR); err != nil {
			return nil, err
		}
	}

	if err := a.writeReport(cfg.Report, report.Build(runID, result)); err != nil {
		return nil, err
	}

	if cfg.Report.ChartPath != "" {
		err := writeFile(cfg.Report.ChartPath, func(w io.Writer) error {
			_, err := chartPNG.WriteTo(w)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("could not write chart: %w", err)
		}
		a.logger.Infof("chart has been saved to %s", cfg.Report.ChartPath)
	}

	return result, nil
}

// Serve runs the configured controllers and blocks until shutdown
func (a *App) Serve(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

func (a *App) loadRows(ctx context.Context, in config.InputData) ([]series.Row, error) {
	switch in.Type {
	case config.InputTypeCSV:
		return source.NewCSVSource(in.Path).Rows(ctx)
	case config.InputTypeSQLite:
		store, err := sqlite.Open(in.Path, in.Table, log.Named("source.sqlite"))
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Rows(ctx)
	}
	return nil, fmt.Errorf("unsupported input type: %s", in.Type)
}

func (a *App) exportFHIR(s *series.Series, c *config.FHIRData) error {
	format, err := responseformat.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("export.fhir.format: %w", err)
	}

	p := c.Patient
	bundle, err := fhir.NewTransformer().Transform(s, fhir.Patient{
		ID:        p.ID,
		Family:    p.Family,
		Given:     p.Given,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	})
	if err != nil {
		return err
	}

	err = writeFile(c.Path, func(w io.Writer) error {
		return fhir.Write(w, format, bundle)
	})
	if err != nil {
		return fmt.Errorf("could not write FHIR export: %w", err)
	}

	a.logger.Infof("FHIR data has been saved to %s", c.Path)
	return nil
}

func (a *App) writeReport(c config.ReportData, rep report.Report) error {
	if c.Path == "" {
		return report.Write(a.out, c.Format, rep)
	}
	err := writeFile(c.Path, func(w io.Writer) error {
		return report.Write(w, c.Format, rep)
	})
	if err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	a.logger.Infof("report has been saved to %s", c.Path)
	return nil
}

// writeFile writes through a temporary file in the target's directory and
// renames it into place, so a failed write leaves no partial file
func writeFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func sourceName(in config.InputData) string {
	if in.Type == config.InputTypeSQLite {
		return in.Path + "#" + in.Table
	}
	return in.Path
}
