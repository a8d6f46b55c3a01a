package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundfWraps(t *testing.T) {
	err := NotFoundf("challenge %s", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "challenge abc: not found", err.Error())
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("bad row")))
	assert.False(t, IsTransient(ErrNotFound))

	assert.True(t, IsTransient(Transientf("pool exhausted")))
	assert.True(t, IsTransient(fmt.Errorf("job: %w", ErrTransient)))
	assert.True(t, IsTransient(context.DeadlineExceeded))

	// Connection exception class.
	assert.True(t, IsTransient(&pgconn.PgError{Code: "08006"}))
	// Admin shutdown.
	assert.True(t, IsTransient(&pgconn.PgError{Code: "57P01"}))
	// Unique violation is the caller's problem, not a retry candidate.
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("nope")))
	assert.False(t, IsUniqueViolation(nil))
}
