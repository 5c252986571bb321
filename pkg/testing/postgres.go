package testing

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/soodoh/openfit/internal/db"
)

// PostgresParams reads the test database from POSTGRES_HOST, POSTGRES_PORT,
// POSTGRES_DB, POSTGRES_USER and POSTGRES_PASSWORD.
func PostgresParams() db.NewDBPoolParams {
	return db.NewDBPoolParams{
		DBHost:     envOr("POSTGRES_HOST", "localhost"),
		DBPort:     envOr("POSTGRES_PORT", "5432"),
		DBName:     envOr("POSTGRES_DB", "openfit_test"),
		DBUser:     envOr("POSTGRES_USER", "postgres"),
		DBPassword: envOr("POSTGRES_PASSWORD", ""),
		MaxConns:   8,
	}
}

// GetDBPool migrates the test database, empties every table and returns a
// pool that is closed when the test ends.
func GetDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	params := PostgresParams()
	t.Logf("using postgres: %s:%s/%s", params.DBHost, params.DBPort, params.DBName)
	require.NoError(t, db.MigrateUp(params.ConnString()))

	pool, err := db.NewDBPool(ctx, params)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE workout_set, set_group, workout_session, routine_day, routine,
			gym, app_user, exercise_muscle, exercise,
			equipment, category, muscle_group, weight_unit, repetition_unit
		CASCADE;`)
	require.NoError(t, err)
	return pool
}
