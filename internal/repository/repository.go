package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/geosheet/internal/table"
	"github.com/google/uuid"
)

// Repository stores annotated rows of geocoding runs.
type Repository struct {
	db  Database
	log *slog.Logger
}

// Interface is what the command needs from a results store.
type Interface interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, run Run, tbl *table.Table, addressCol int) (int, error)
}

// Run identifies one execution of the batch.
type Run struct {
	ID         uuid.UUID
	SourceFile string
}

// NewRun creates a Run with a fresh random identifier.
func NewRun(sourceFile string) Run {
	return Run{ID: uuid.New(), SourceFile: sourceFile}
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
