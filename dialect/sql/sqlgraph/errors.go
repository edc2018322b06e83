// Package sqlgraph classifies database errors independently of the driver
// that produced them.
package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
)

// kind is a class of constraint violation.
type kind int

const (
	unique kind = iota
	foreignKey
	check
)

// codes holds how each driver reports a constraint kind.
type codes struct {
	pg     pq.ErrorCode // PostgreSQL SQLSTATE (class 23)
	mysql  []uint16     // MySQL error numbers
	sqlite int          // SQLite extended result code
	texts  []string     // Message fallbacks for wrapped or foreign drivers
}

var kinds = map[kind]codes{
	unique: {
		pg:     "23505",
		mysql:  []uint16{1062},
		sqlite: 2067,
		texts:  []string{"Error 1062", "violates unique constraint", "UNIQUE constraint failed"},
	},
	foreignKey: {
		pg:     "23503",
		mysql:  []uint16{1451, 1452},
		sqlite: 787,
		texts:  []string{"Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"},
	},
	check: {
		pg:     "23514",
		mysql:  []uint16{3819},
		sqlite: 275,
		texts:  []string{"Error 3819", "violates check constraint", "CHECK constraint failed"},
	},
}

// sqlStateError is implemented by drivers that expose SQLSTATE codes (pgx).
type sqlStateError interface {
	SQLState() string
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	return is(err, unique)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return is(err, foreignKey)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
// e.g. a value does not satisfy a check condition.
func IsCheckConstraintError(err error) bool {
	return is(err, check)
}

func is(err error, k kind) bool {
	if err == nil {
		return false
	}
	c := kinds[k]
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == c.pg
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		for _, n := range c.mysql {
			if myErr.Number == n {
				return true
			}
		}
		return false
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == c.sqlite {
		return true
	}
	var stateErr sqlStateError
	if errors.As(err, &stateErr) && stateErr.SQLState() == string(c.pg) {
		return true
	}
	msg := err.Error()
	for _, s := range c.texts {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
