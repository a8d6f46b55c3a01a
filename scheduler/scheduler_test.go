package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cavemindAPI/internal/apperr"
)

func newTestScheduler() (*Scheduler, *[]time.Duration) {
	var slept []time.Duration
	s := New(time.UTC)
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	return s, &slept
}

func TestRunSafeSucceedsFirstAttempt(t *testing.T) {
	s, slept := newTestScheduler()

	calls := 0
	s.RunSafe(context.Background(), "test-job", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRunSafeRetriesTransientErrors(t *testing.T) {
	s, slept := newTestScheduler()

	calls := 0
	s.RunSafe(context.Background(), "test-job", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apperr.Transientf("connection reset")
		}
		return nil
	})

	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{retryDelay, retryDelay}, *slept)
}

func TestRunSafeAbandonsAfterMaxAttempts(t *testing.T) {
	s, slept := newTestScheduler()

	calls := 0
	s.RunSafe(context.Background(), "test-job", func(ctx context.Context) error {
		calls++
		return apperr.Transientf("still down")
	})

	assert.Equal(t, maxAttempts, calls)
	// No sleep after the final attempt.
	assert.Len(t, *slept, maxAttempts-1)
}

func TestRunSafeDoesNotRetryOtherErrors(t *testing.T) {
	s, slept := newTestScheduler()

	calls := 0
	s.RunSafe(context.Background(), "test-job", func(ctx context.Context) error {
		calls++
		return errors.New("bad nudge row")
	})

	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestRunSafeGivesEachAttemptItsOwnDeadline(t *testing.T) {
	s, _ := newTestScheduler()

	s.RunSafe(context.Background(), "test-job", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(jobTimeout), deadline, time.Second)
		return nil
	})
}

func TestRegisterAcceptsDailySpecs(t *testing.T) {
	s, _ := newTestScheduler()

	assert.NoError(t, s.Register("0 9 * * *", "daily-nudge", func(ctx context.Context) error { return nil }))
	assert.NoError(t, s.Register("10 0 * * *", "finalize-expired", func(ctx context.Context) error { return nil }))
	assert.Error(t, s.Register("not a spec", "broken", func(ctx context.Context) error { return nil }))
}
