// Package sql implements dialect.Driver on top of database/sql.
//
// The Driver executes statements through Exec and Query, where Exec accepts
// a nil or *sql.Result destination and Query fills a *sql.Rows:
//
//	var rows sql.Rows
//	if err := drv.Query(ctx, "SELECT id FROM customers", []any{}, &rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
//
// Statements are written with '?' placeholders and passed through Rebind,
// which converts them for dialects with numbered bind variables.
//
// StatsDriver and DebugDriver wrap any dialect.Driver and may be stacked:
//
//	var drv dialect.Driver = base
//	drv = sql.NewDebugDriver(drv, logger)
//	drv = sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
package sql
