package push

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"cavemindAPI/internal/types/notification"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status int
		want   StatusClass
	}{
		{http.StatusOK, ClassOK},
		{http.StatusCreated, ClassOK},
		{http.StatusNoContent, ClassOK},
		{http.StatusGone, ClassGone},
		{http.StatusNotFound, ClassNotFound},
		{http.StatusBadRequest, ClassMalformed},
		{http.StatusUnauthorized, ClassUnauthorized},
		{http.StatusForbidden, ClassUnauthorized},
		{http.StatusInternalServerError, ClassOther},
		{http.StatusTooManyRequests, ClassOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.status), "status %d", tt.status)
	}
}

// Only endpoints the push service reports gone or missing are dropped;
// payload and auth problems are our fault, not the subscription's.
func TestStale(t *testing.T) {
	assert.True(t, ClassGone.Stale())
	assert.True(t, ClassNotFound.Stale())
	assert.False(t, ClassOK.Stale())
	assert.False(t, ClassMalformed.Stale())
	assert.False(t, ClassUnauthorized.Stale())
	assert.False(t, ClassOther.Stale())
}

func TestNoopSenderNeverSucceeds(t *testing.T) {
	sub := &notification.WebPushSubscription{Endpoint: "https://push.example/abc"}
	result := NoopSender{}.Send(context.Background(), sub, &notification.Payload{Title: "hi"})

	assert.False(t, result.OK())
	assert.False(t, result.Class.Stale())
	assert.NoError(t, result.Err)
}
