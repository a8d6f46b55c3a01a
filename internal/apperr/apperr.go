// Package apperr defines the error taxonomy shared by services, handlers
// and scheduled jobs. Handlers translate these sentinels into HTTP status
// codes; the scheduler uses IsTransient to decide whether a job attempt is
// worth retrying.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrTransient     = errors.New("transient storage error")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Transientf wraps ErrTransient with a formatted message.
func Transientf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrTransient)...)
}

// IsTransient reports whether err looks like a retryable storage failure:
// anything tagged ErrTransient, a connection-level pgx error, or a network
// timeout. Integrity violations and plain query errors are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 covers connection exceptions, 57 operator intervention
		// (admin shutdown, crash shutdown).
		code := pgErr.Code
		return len(code) >= 2 && (code[:2] == "08" || code[:2] == "57")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsUniqueViolation reports whether err is a storage uniqueness conflict
// (SQLSTATE 23505). The duplicate-log and duplicate-active-assignment
// constraints surface through this.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
