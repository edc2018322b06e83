package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crm/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	ctx := context.Background()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("UPDATE").WillReturnError(errors.New("locked"))
	require.Error(t, drv.Exec(ctx, "UPDATE products SET stock = 1", []any{}, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO products (name) VALUES (?)", []any{"pen"}, nil))
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err = drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.Stats()
	assert.Equal(t, Stats{
		Queries:   1,
		Execs:     2,
		Txs:       2,
		Commits:   1,
		Rollbacks: 1,
		Slow:      3,
		Errors:    1,
		Duration:  s.Duration,
	}, s)
	assert.Equal(t, []string{"SELECT 1", "UPDATE products SET stock = 1", "INSERT INTO products (name) VALUES (?)"}, slow)
	assert.Contains(t, s.String(), "queries=1 execs=2 txs=2 commits=1 rollbacks=1")
}

func TestStatsDriver_BeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))

	mock.ExpectBegin().WillReturnError(errors.New("busy"))
	_, err = drv.Tx(context.Background())
	require.Error(t, err)
	s := drv.Stats()
	assert.Zero(t, s.Txs)
	assert.EqualValues(t, 1, s.Errors)
}

func TestStatsDriver_Threshold(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	assert.Equal(t, DefaultSlowThreshold, NewStatsDriver(OpenDB(dialect.SQLite, db)).SlowThreshold())

	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(time.Hour))
	assert.Equal(t, time.Hour, drv.SlowThreshold())
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM orders", []any{}, nil))
	assert.Zero(t, drv.Stats().Slow)
}

func TestStats(t *testing.T) {
	assert.Zero(t, Stats{}.Avg())
	s := Stats{Queries: 3, Execs: 1, Duration: 8 * time.Millisecond}
	assert.EqualValues(t, 4, s.Statements())
	assert.Equal(t, 2*time.Millisecond, s.Avg())

	prev := Stats{Queries: 1, Commits: 1, Duration: time.Millisecond}
	assert.Equal(t, Stats{Queries: 2, Execs: 1, Commits: -1, Duration: 7 * time.Millisecond}, s.Sub(prev))

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("done", "stats", s)
	assert.Contains(t, buf.String(), "stats.queries=3")
	assert.Contains(t, buf.String(), "stats.avg=2ms")
}

func TestSlowQueryLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db), WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, drv.Exec(context.Background(), "DELETE FROM orders", []any{}, nil))
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), "DELETE FROM orders")
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), logger)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO customers (name) VALUES (?)", []any{"Ann"}, nil))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "sql begin")
	assert.Contains(t, out, "sql exec")
	assert.Contains(t, out, "sql rollback")
	assert.Contains(t, out, "tx=")
}

func TestStackedDrivers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var drv dialect.Driver = OpenDB(dialect.SQLite, db)
	drv = NewDebugDriver(drv, logger)
	stats := NewStatsDriver(drv)

	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, stats.Exec(context.Background(), "DELETE FROM orders", []any{}, nil))
	assert.EqualValues(t, 1, stats.Stats().Execs)
	assert.Equal(t, dialect.SQLite, stats.Dialect())
}
