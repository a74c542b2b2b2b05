//go:build integration

package repository_test

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSaveRun_Postgres(t *testing.T) {
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("geosheet"),
		postgres.WithUsername("geosheet"),
		postgres.WithPassword("geosheet"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	poolCfg, err := pgxpool.ParseConfig(connStr)
	require.NoError(t, err)

	conn := poolCfg.ConnConfig
	dtb, err := repository.NewDatabase(ctx, conn.Host, fmt.Sprint(conn.Port), conn.User, conn.Password, conn.Database)
	require.NoError(t, err)
	defer dtb.Close()

	repo := repository.NewRepository(dtb, slog.Default())
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx), "schema creation is repeatable")

	run := repository.NewRun("enderecos.xlsx")
	saved, err := repo.SaveRun(ctx, run, annotatedTable(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	var found, missing int
	err = dtb.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE latitude IS NOT NULL),
			count(*) FILTER (WHERE latitude IS NULL)
		FROM public.geocoded_addresses WHERE run_id = $1`, run.ID).Scan(&found, &missing)
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	assert.Equal(t, 1, missing)
}
