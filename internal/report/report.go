// Package report renders batch progress and results for the operator.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/UnknownOlympus/geosheet/internal/service"
	"github.com/UnknownOlympus/geosheet/internal/table"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// PreviewRows is how many rows PrintPreview shows.
const PreviewRows = 10

// FormattingTip is printed when some addresses could not be resolved.
const FormattingTip = "'Rua, Número, Cidade, Estado, País'"

// Reporter logs every processed row and, when a progress writer is set,
// draws a progress bar on it.
type Reporter struct {
	log      *slog.Logger
	progress io.Writer
	bar      *progressbar.ProgressBar
}

// NewReporter creates a Reporter. A nil progress writer disables the bar.
func NewReporter(log *slog.Logger, progress io.Writer) *Reporter {
	return &Reporter{log: log, progress: progress}
}

// TerminalWriter returns os.Stderr when it is a terminal, nil otherwise.
func TerminalWriter() io.Writer {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return os.Stderr
	}

	return nil
}

// Start implements service.Reporter.
func (r *Reporter) Start(_ context.Context, total int) {
	if r.progress == nil {
		return
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Geocoding"),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// RowProcessed implements service.Reporter.
func (r *Reporter) RowProcessed(ctx context.Context, event service.Event) {
	position := fmt.Sprintf("%d/%d", event.Index, event.Total)

	switch event.Status {
	case table.StatusFound:
		coords := event.Resolution.Coordinates
		r.log.InfoContext(ctx, "Address geocoded",
			"row", position,
			"address", event.Address,
			"provider", event.Resolution.Provider,
			"lat", strconv.FormatFloat(coords.Latitude, 'f', 6, 64),
			"lng", strconv.FormatFloat(coords.Longitude, 'f', 6, 64),
		)
	case table.StatusNotFound:
		r.log.WarnContext(ctx, "Address not found", "row", position, "address", event.Address)
	case table.StatusSkipped:
		r.log.WarnContext(ctx, "Empty address", "row", position)
	case table.StatusUnprocessed:
	}

	if r.bar != nil {
		if err := r.bar.Add(1); err != nil {
			r.log.DebugContext(ctx, "failed to update progress bar", "error", err)
		}
	}
}

// Finish implements service.Reporter.
func (r *Reporter) Finish(ctx context.Context, summary service.Summary) {
	if r.bar != nil {
		if err := r.bar.Finish(); err != nil {
			r.log.DebugContext(ctx, "failed to finish progress bar", "error", err)
		}
	}
	r.log.InfoContext(ctx, "Geocoding finished",
		"found", summary.Found, "total", summary.Total)
}

// PrintPreview writes the address and coordinate columns of the first
// PreviewRows rows as an aligned table.
func PrintPreview(out io.Writer, tbl *table.Table, addressCol int) error {
	latCol, latErr := tbl.ColumnIndex(table.LatitudeColumn)
	lngCol, lngErr := tbl.ColumnIndex(table.LongitudeColumn)
	if latErr != nil || lngErr != nil {
		return fmt.Errorf("table has no coordinate columns: %w", table.ErrColumnNotFound)
	}

	padding, ruler := 2, 80
	tw := tabwriter.NewWriter(out, 0, 0, padding, ' ', 0)
	fmt.Fprintln(tw, "\nFIRST RESULTS")
	fmt.Fprintln(tw, strings.Repeat("=", ruler))
	fmt.Fprintf(tw, "#\t%s\t%s\t%s\n", tbl.Columns[addressCol], tbl.Columns[latCol], tbl.Columns[lngCol])
	for i, row := range tbl.Rows {
		if i >= PreviewRows {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, row.Value(addressCol), row.Value(latCol), row.Value(lngCol))
	}

	return tw.Flush()
}

// PrintSummary writes the final statistics and, when some rows failed, a hint
// on how to format addresses.
func PrintSummary(out io.Writer, summary service.Summary, outputPath string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\nResult: %d/%d addresses geocoded\n", summary.Found, summary.Total)
	if outputPath != "" {
		fmt.Fprintf(&sb, "Saved to: %s\n", outputPath)
	}
	fmt.Fprintln(&sb, "\nFINAL STATISTICS")
	fmt.Fprintf(&sb, "Found:  %d/%d (%.1f%%)\n", summary.Found, summary.Total, summary.FoundPercent())
	fmt.Fprintf(&sb, "Failed: %d/%d (%.1f%%)\n", summary.Failed(), summary.Total, summary.FailedPercent())
	if summary.Failed() > 0 {
		fmt.Fprintln(&sb, "\nTip: addresses that failed may be formatted as:")
		fmt.Fprintf(&sb, "   %s\n", FormattingTip)
	}

	_, err := io.WriteString(out, sb.String())

	return err
}
