package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/crm/dialect"
)

// DefaultSlowThreshold is the slow statement threshold of a StatsDriver
// created without WithSlowThreshold.
const DefaultSlowThreshold = 100 * time.Millisecond

// Stats is a snapshot of the statement counters of a StatsDriver.
type Stats struct {
	Queries   int64
	Execs     int64
	Txs       int64
	Commits   int64
	Rollbacks int64
	Slow      int64
	Errors    int64
	Duration  time.Duration
}

// Statements returns the number of queries and execs.
func (s Stats) Statements() int64 { return s.Queries + s.Execs }

// Avg returns the mean statement duration.
func (s Stats) Avg() time.Duration {
	n := s.Statements()
	if n == 0 {
		return 0
	}
	return s.Duration / time.Duration(n)
}

// Sub returns the counters accumulated since prev was taken.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		Queries:   s.Queries - prev.Queries,
		Execs:     s.Execs - prev.Execs,
		Txs:       s.Txs - prev.Txs,
		Commits:   s.Commits - prev.Commits,
		Rollbacks: s.Rollbacks - prev.Rollbacks,
		Slow:      s.Slow - prev.Slow,
		Errors:    s.Errors - prev.Errors,
		Duration:  s.Duration - prev.Duration,
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("queries", s.Queries),
		slog.Int64("execs", s.Execs),
		slog.Int64("txs", s.Txs),
		slog.Int64("commits", s.Commits),
		slog.Int64("rollbacks", s.Rollbacks),
		slog.Int64("slow", s.Slow),
		slog.Int64("errors", s.Errors),
		slog.Duration("avg", s.Avg()),
	)
}

func (s Stats) String() string {
	return fmt.Sprintf("queries=%d execs=%d txs=%d commits=%d rollbacks=%d slow=%d errors=%d avg=%s",
		s.Queries, s.Execs, s.Txs, s.Commits, s.Rollbacks, s.Slow, s.Errors, s.Avg())
}

type counters struct {
	queries, execs, txs, commits, rollbacks, slow, errors, duration atomic.Int64
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, took time.Duration)

// StatsDriver counts the statements and transactions of the wrapped driver.
type StatsDriver struct {
	dialect.Driver
	c         *counters
	threshold time.Duration
	onSlow    SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.onSlow = hook }
}

// WithSlowQueryLog logs slow statements at warn level.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, took time.Duration) {
		logger.WarnContext(ctx, "slow query detected", "took", took, "sql", query, "args", args)
	})
}

// NewStatsDriver wraps drv with statement statistics.
//
//	drv, _ := sql.Open(dialect.Postgres, dsn)
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	)
//	client := store.NewClient(stats)
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, c: &counters{}, threshold: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns a snapshot of the counters.
func (d *StatsDriver) Stats() Stats {
	return Stats{
		Queries:   d.c.queries.Load(),
		Execs:     d.c.execs.Load(),
		Txs:       d.c.txs.Load(),
		Commits:   d.c.commits.Load(),
		Rollbacks: d.c.rollbacks.Load(),
		Slow:      d.c.slow.Load(),
		Errors:    d.c.errors.Load(),
		Duration:  time.Duration(d.c.duration.Load()),
	}
}

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration { return d.threshold }

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.c.queries, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.c.execs, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

func (d *StatsDriver) observe(ctx context.Context, kind *atomic.Int64, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	took := time.Since(start)
	kind.Add(1)
	d.c.duration.Add(int64(took))
	if err != nil {
		d.c.errors.Add(1)
	}
	if took > d.threshold {
		d.c.slow.Add(1)
		if d.onSlow != nil {
			list, _ := args.([]any)
			d.onSlow(ctx, query, list, took)
		}
	}
	return err
}

// Tx implements dialect.Driver. Statements of the transaction are counted
// with the driver's.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		d.c.errors.Add(1)
		return nil, err
	}
	d.c.txs.Add(1)
	return &statsTx{Tx: tx, drv: d}, nil
}

type statsTx struct {
	dialect.Tx
	drv *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.drv.observe(ctx, &tx.drv.c.queries, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.drv.observe(ctx, &tx.drv.c.execs, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func (tx *statsTx) Commit() error {
	err := tx.Tx.Commit()
	if err != nil {
		tx.drv.c.errors.Add(1)
	} else {
		tx.drv.c.commits.Add(1)
	}
	return err
}

func (tx *statsTx) Rollback() error {
	err := tx.Tx.Rollback()
	if err != nil {
		tx.drv.c.errors.Add(1)
	} else {
		tx.drv.c.rollbacks.Add(1)
	}
	return err
}

// DebugDriver logs every statement of the wrapped driver at debug level.
// Statements run inside a transaction carry the transaction id.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// NewDebugDriver wraps drv with statement logging.
func NewDebugDriver(drv dialect.Driver, logger *slog.Logger) *DebugDriver {
	return &DebugDriver{Driver: drv, logger: logger}
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "sql query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.logger.DebugContext(ctx, "sql exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx implements dialect.Driver.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	logger := d.logger.With("tx", uuid.NewString())
	logger.DebugContext(ctx, "sql begin")
	return &debugTx{Tx: tx, ctx: ctx, logger: logger}, nil
}

type debugTx struct {
	dialect.Tx
	ctx    context.Context
	logger *slog.Logger
}

func (tx *debugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "sql query", "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

func (tx *debugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.logger.DebugContext(ctx, "sql exec", "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

func (tx *debugTx) Commit() error {
	tx.logger.DebugContext(tx.ctx, "sql commit")
	return tx.Tx.Commit()
}

func (tx *debugTx) Rollback() error {
	tx.logger.DebugContext(tx.ctx, "sql rollback")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*debugTx)(nil)
)
