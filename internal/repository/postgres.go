package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/geosheet/internal/table"
	"github.com/jackc/pgx/v5"
)

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS public.geocoded_addresses (
		run_id      UUID             NOT NULL,
		source_file TEXT             NOT NULL,
		row_number  INTEGER          NOT NULL,
		address     TEXT             NOT NULL,
		status      TEXT             NOT NULL,
		provider    TEXT,
		latitude    DOUBLE PRECISION,
		longitude   DOUBLE PRECISION,
		created_at  TIMESTAMPTZ      NOT NULL DEFAULT now(),
		PRIMARY KEY (run_id, row_number)
	);
`

const insertRowQuery = `
	INSERT INTO public.geocoded_addresses
		(run_id, source_file, row_number, address, status, provider, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

// EnsureSchema creates the results table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	return nil
}

// SaveRun inserts every row of tbl under run in a single transaction and
// returns the number of rows written. Rows without coordinates are stored
// with NULL latitude, longitude and provider.
func (r *Repository) SaveRun(ctx context.Context, run Run, tbl *table.Table, addressCol int) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = insertRows(ctx, tx, run, tbl, addressCol); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.ErrorContext(ctx, "failed to rollback transaction", "error", rbErr)
		}
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	r.log.InfoContext(ctx, "Results exported to database", "run_id", run.ID, "rows", len(tbl.Rows))

	return len(tbl.Rows), nil
}

func insertRows(ctx context.Context, tx pgx.Tx, run Run, tbl *table.Table, addressCol int) error {
	for idx, row := range tbl.Rows {
		var provider *string
		var lat, lng *float64
		if coords := row.Resolution.Coordinates; coords != nil {
			provider = &row.Resolution.Provider
			lat, lng = &coords.Latitude, &coords.Longitude
		}

		_, err := tx.Exec(ctx, insertRowQuery,
			run.ID, run.SourceFile, idx+1, row.Value(addressCol), row.Status.String(), provider, lat, lng)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", idx+1, err)
		}
	}

	return nil
}
