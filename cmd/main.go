package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/config"
	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/report"
	"github.com/UnknownOlympus/geosheet/internal/repository"
	"github.com/UnknownOlympus/geosheet/internal/service"
	"github.com/UnknownOlympus/geosheet/internal/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geosheet",
		Short: "Add LATITUDE and LONGITUDE columns to a spreadsheet of addresses",
		Long: `geosheet reads the first sheet of an .xlsx workbook, geocodes the address
column row by row and writes a copy of the workbook with LATITUDE and LONGITUDE
columns next to the input file.

Configuration comes from the environment or a .env file:
  ARQUIVO_EXCEL             input workbook (default ` + config.DefaultInputFile + `)
  COLUNA_ENDERECO           address column (default ` + config.DefaultAddressColumn + `)
  GOOGLE_MAPS_API_KEY       enables Google Maps, tried before Nominatim
  GEOCODER_PROVIDERS        provider order (default ` + config.DefaultProviders + `)
  GEOCODER_DELAY            minimum interval between rows (default ` + config.DefaultDelay + `)
  GEOCODER_PUSHGATEWAY_URL  push run metrics to a Prometheus Pushgateway
  DB_HOST, DB_NAME, ...     export annotated rows to PostgreSQL`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.MustLoad()
			logger := setupLogger(cfg.Env, cmd.ErrOrStderr())

			reg := prometheus.NewRegistry()
			appMetrics := metrics.NewMetrics(reg)

			providers, err := geocoding.NewProviders(geocoding.ProviderConfig{
				Order:         geocoding.ParseOrder(cfg.Providers),
				GoogleAPIKey:  cfg.GoogleAPIKey,
				VisicomAPIKey: cfg.VisicomAPIKey,
				CountryCodes:  cfg.CountryCodes,
				UserAgent:     cfg.UserAgent,
				Timeout:       cfg.Timeout,
				Logger:        logger,
			})
			if err != nil {
				logger.ErrorContext(cmd.Context(), "Failed to create geocoding providers", "error", err)
				return err
			}

			a := &app{
				cfg:       cfg,
				log:       logger,
				out:       cmd.OutOrStdout(),
				progress:  report.TerminalWriter(),
				providers: providers,
				registry:  reg,
				metrics:   appMetrics,
			}
			if err = a.run(cmd.Context()); err != nil {
				logger.ErrorContext(cmd.Context(), "Geocoding failed", "error", err)
			}

			return err
		},
	}
}

// app wires one run of the batch.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	out       io.Writer
	progress  io.Writer
	providers []geocoding.Provider
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
}

func (a *app) run(ctx context.Context) error {
	start := time.Now()
	a.printBanner()

	workbook, err := table.Open(a.cfg.InputFile)
	if errors.Is(err, table.ErrFileNotFound) {
		a.log.ErrorContext(ctx, "Input file not found", "file", a.cfg.InputFile)
		a.listCandidates(ctx)
		return nil
	}
	if err != nil {
		return err
	}

	for _, p := range a.providers {
		if !p.Available() {
			a.log.WarnContext(ctx, "Geocoding provider is not configured, skipping it", "provider", p.Name())
		}
	}

	resolver := service.NewResolver(a.log, a.providers, a.metrics)
	reporter := report.NewReporter(a.log, a.progress)
	batch := service.NewBatchProcessor(a.log, resolver, reporter, a.metrics, a.cfg.Delay)

	summary, err := batch.Process(ctx, workbook.Table, a.cfg.AddressColumn)
	var schemaErr *table.SchemaError
	if errors.As(err, &schemaErr) {
		a.log.ErrorContext(ctx, "Address column not found",
			"column", schemaErr.Column, "available", schemaErr.Available)
		return err
	}
	if err != nil {
		return err
	}

	outputPath := table.OutputPath(a.cfg.InputFile, a.cfg.OutputSuffix)
	if err = workbook.Save(outputPath); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "Output file saved", "file", outputPath)

	addressCol, _ := workbook.Table.ColumnIndex(a.cfg.AddressColumn)
	if err = report.PrintPreview(a.out, workbook.Table, addressCol); err != nil {
		a.log.WarnContext(ctx, "Failed to print preview", "error", err)
	}
	if err = report.PrintSummary(a.out, summary, outputPath); err != nil {
		a.log.WarnContext(ctx, "Failed to print summary", "error", err)
	}

	a.metrics.LastRunSeconds.Set(time.Since(start).Seconds())
	a.exportResults(ctx, workbook.Table, addressCol)
	a.pushMetrics(ctx)

	return nil
}

func (a *app) printBanner() {
	googleState := "not configured"
	if a.cfg.GoogleAPIKey != "" {
		googleState = "configured"
	}
	rulerWidth := 50
	ruler := strings.Repeat("=", rulerWidth)

	fmt.Fprintln(a.out, "STARTING GEOCODING")
	fmt.Fprintln(a.out, ruler)
	fmt.Fprintf(a.out, "File:        %s\n", a.cfg.InputFile)
	fmt.Fprintf(a.out, "Column:      %s\n", a.cfg.AddressColumn)
	fmt.Fprintf(a.out, "Google Maps: %s\n", googleState)
	fmt.Fprintf(a.out, "Providers:   %s\n", strings.Join(a.cfg.Providers, " -> "))
	fmt.Fprintln(a.out, ruler)
}

func (a *app) listCandidates(ctx context.Context) {
	dir := filepath.Dir(a.cfg.InputFile)
	names, err := table.Candidates(dir)
	if err != nil {
		a.log.WarnContext(ctx, "Failed to list spreadsheet files", "dir", dir, "error", err)
		return
	}

	fmt.Fprintf(a.out, "Spreadsheet files available in %s:\n", dir)
	if len(names) == 0 {
		fmt.Fprintln(a.out, "   (none)")
	}
	for _, name := range names {
		fmt.Fprintf(a.out, "   - %s\n", name)
	}
}

// exportResults stores the annotated rows in PostgreSQL when a database is configured.
// Failures are logged and never fail the run: the workbook is already saved.
func (a *app) exportResults(ctx context.Context, tbl *table.Table, addressCol int) {
	dbCfg := a.cfg.Database
	if !dbCfg.Enabled() {
		return
	}

	dtb, err := repository.NewDatabase(ctx, dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.Name)
	if err != nil {
		a.log.ErrorContext(ctx, "Failed to connect to DB, skipping export", "error", err)
		return
	}
	defer dtb.Close()

	a.saveRun(ctx, repository.NewRepository(dtb, a.log), tbl, addressCol)
}

func (a *app) saveRun(ctx context.Context, store repository.Interface, tbl *table.Table, addressCol int) {
	if err := store.EnsureSchema(ctx); err != nil {
		a.log.ErrorContext(ctx, "Failed to prepare results table", "error", err)
		return
	}
	if _, err := store.SaveRun(ctx, repository.NewRun(filepath.Base(a.cfg.InputFile)), tbl, addressCol); err != nil {
		a.log.ErrorContext(ctx, "Failed to export results", "error", err)
	}
}

func (a *app) pushMetrics(ctx context.Context) {
	if a.cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, a.cfg.PushgatewayURL, a.registry); err != nil {
		a.log.ErrorContext(ctx, "Failed to push metrics", "error", err)
		return
	}
	a.log.DebugContext(ctx, "Metrics pushed", "url", a.cfg.PushgatewayURL)
}

// setupLogger initializes and returns a logger based on the environment provided.
// Logs go to w so that stdout carries only the report.
func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
