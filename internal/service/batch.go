package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/models"
	"github.com/UnknownOlympus/geosheet/internal/table"
	"golang.org/x/time/rate"
)

// AddressResolver turns one address into a resolution. It never fails.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) models.Resolution
}

// Event describes one processed row.
type Event struct {
	Index      int // Index is 1-based.
	Total      int
	Address    string
	Status     table.Status
	Resolution models.Resolution
}

// Reporter receives progress while a batch runs.
type Reporter interface {
	Start(ctx context.Context, total int)
	RowProcessed(ctx context.Context, event Event)
	Finish(ctx context.Context, summary Summary)
}

// Summary holds the counters of a finished batch.
type Summary struct {
	Total    int
	Found    int
	NotFound int
	Skipped  int
}

// Failed counts every row without coordinates, skipped rows included.
func (s Summary) Failed() int {
	return s.Total - s.Found
}

// FoundPercent is the share of rows with coordinates, 0 for an empty batch.
func (s Summary) FoundPercent() float64 {
	return percent(s.Found, s.Total)
}

// FailedPercent is the share of rows without coordinates, 0 for an empty batch.
func (s Summary) FailedPercent() float64 {
	return percent(s.Failed(), s.Total)
}

func percent(part, total int) float64 {
	const scale = 100
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * scale
}

// missingMarkers are cell values spreadsheet exports use for "no value".
var missingMarkers = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"#n/a": {},
}

// IsMissing reports whether a trimmed address cell holds no usable address.
func IsMissing(address string) bool {
	if address == "" {
		return true
	}
	_, ok := missingMarkers[strings.ToLower(address)]

	return ok
}

// BatchProcessor geocodes the rows of a table one at a time, in order,
// pacing them so that consecutive rows start at least delay apart.
type BatchProcessor struct {
	log      *slog.Logger
	resolver AddressResolver
	reporter Reporter
	metrics  *metrics.Metrics
	limiter  *rate.Limiter
}

// NewBatchProcessor creates a BatchProcessor. A non-positive delay disables pacing.
func NewBatchProcessor(
	log *slog.Logger,
	resolver AddressResolver,
	reporter Reporter,
	metrics *metrics.Metrics,
	delay time.Duration,
) *BatchProcessor {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &BatchProcessor{
		log:      log,
		resolver: resolver,
		reporter: reporter,
		metrics:  metrics,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Process resolves the address in column for every row of tbl and writes the
// outcome into the row and into the LATITUDE/LONGITUDE columns.
//
// A missing column fails the whole batch before any row is touched with a
// *table.SchemaError. Per-row problems never fail the batch. Cancelling ctx
// stops the loop and returns the context error.
func (bp *BatchProcessor) Process(ctx context.Context, tbl *table.Table, column string) (Summary, error) {
	addrCol, err := tbl.ColumnIndex(column)
	if err != nil {
		return Summary{}, err
	}
	latCol := tbl.EnsureColumn(table.LatitudeColumn)
	lngCol := tbl.EnsureColumn(table.LongitudeColumn)

	total := len(tbl.Rows)
	summary := Summary{Total: total}

	bp.log.InfoContext(ctx, "Processing addresses", "rows", total, "column", tbl.Columns[addrCol])
	bp.reporter.Start(ctx, total)

	for idx := range tbl.Rows {
		if err = bp.limiter.Wait(ctx); err != nil {
			return summary, fmt.Errorf("batch interrupted at row %d: %w", idx+1, err)
		}

		row := &tbl.Rows[idx]
		address := strings.TrimSpace(row.Value(addrCol))

		if IsMissing(address) {
			row.Status = table.StatusSkipped
			row.Resolution = models.Resolution{}
			summary.Skipped++
			bp.log.DebugContext(ctx, "Empty address, skipping row", "row", idx+1)
		} else {
			row.Resolution = bp.resolver.Resolve(ctx, address)
			if row.Resolution.Found() {
				row.Status = table.StatusFound
				summary.Found++
			} else {
				row.Status = table.StatusNotFound
				summary.NotFound++
			}
		}

		writeCoordinates(row, len(tbl.Columns), latCol, lngCol)
		bp.metrics.RowsProcessed.WithLabelValues(row.Status.String()).Inc()
		bp.reporter.RowProcessed(ctx, Event{
			Index:      idx + 1,
			Total:      total,
			Address:    address,
			Status:     row.Status,
			Resolution: row.Resolution,
		})
	}

	bp.reporter.Finish(ctx, summary)
	bp.log.InfoContext(ctx, "Processing batch finished",
		"total", summary.Total, "found", summary.Found, "not_found", summary.NotFound, "skipped", summary.Skipped)

	return summary, nil
}

func writeCoordinates(row *table.Row, width, latCol, lngCol int) {
	for len(row.Values) < width {
		row.Values = append(row.Values, "")
	}

	coords := row.Resolution.Coordinates
	if coords == nil {
		row.Values[latCol], row.Values[lngCol] = "", ""
		return
	}
	row.Values[latCol] = strconv.FormatFloat(coords.Latitude, 'f', -1, 64)
	row.Values[lngCol] = strconv.FormatFloat(coords.Longitude, 'f', -1, 64)
}
