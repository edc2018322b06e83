package graph

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/syssam/crm"
)

// Error codes reported in the "extensions" of GraphQL errors.
const (
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeConflict     = "CONFLICT"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL"
)

// Error is a resolver error. Its message is the client-facing message of
// the cause, which stays reachable through Unwrap.
type Error struct {
	msg  string
	code string
	err  error
}

// Error returns the client-facing message.
func (e *Error) Error() string { return e.msg }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

// Code returns the error code.
func (e *Error) Code() string { return e.code }

// Extensions implements the extensions hook of the GraphQL engine.
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": e.code}
}

// wrapError converts a service error to a resolver error.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	switch {
	case crm.IsValidationError(err):
		code = CodeBadUserInput
	case crm.IsConstraintError(err):
		code = CodeConflict
	case crm.IsNotFound(err):
		code = CodeNotFound
	}
	return &Error{msg: crm.PublicMessage(err), code: code, err: err}
}

// panicLogger reports resolver panics to slog.
type panicLogger struct {
	logger *slog.Logger
}

// LogPanic implements the panic logger of the GraphQL engine.
func (l panicLogger) LogPanic(ctx context.Context, value any) {
	l.logger.ErrorContext(ctx, "graphql: panic occurred", "panic", value, "stack", string(debug.Stack()))
}
