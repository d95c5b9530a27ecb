// errors.go classifies warehouse failures into a small taxonomy the
// pipeline can render in plain language.
package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorKind buckets a query failure.
type ErrorKind string

const (
	ErrKindSyntax     ErrorKind = "syntax"
	ErrKindPermission ErrorKind = "permission"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindForbidden  ErrorKind = "forbidden" // rejected by the read-only guard
	ErrKindOther      ErrorKind = "other"
)

// QueryError is a structured execution error.
type QueryError struct {
	Kind    ErrorKind
	Message string
}

func (e *QueryError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// classifyError maps pgx/pgconn errors onto the taxonomy.
func classifyError(err error) *QueryError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &QueryError{Kind: ErrKindTimeout, Message: "query timed out"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := ErrKindOther
		switch {
		case strings.HasPrefix(pgErr.Code, "42"): // syntax error or access rule violation
			kind = ErrKindSyntax
			if pgErr.Code == "42501" { // insufficient_privilege
				kind = ErrKindPermission
			}
		case strings.HasPrefix(pgErr.Code, "28"): // invalid authorization
			kind = ErrKindPermission
		case pgErr.Code == "57014": // query_canceled (statement_timeout)
			kind = ErrKindTimeout
		}
		return &QueryError{Kind: kind, Message: pgErr.Message}
	}

	return &QueryError{Kind: ErrKindOther, Message: err.Error()}
}
