package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"cavemindAPI/internal/push"
	"cavemindAPI/internal/types/notification"
)

// fakePushSender classifies deliveries by endpoint substring so tests can
// mix healthy and dead subscriptions in one batch.
type fakePushSender struct {
	classes map[string]push.StatusClass
	sent    []string
}

func (f *fakePushSender) Send(ctx context.Context, sub *notification.WebPushSubscription, payload *notification.Payload) push.Result {
	f.sent = append(f.sent, sub.Endpoint)
	if class, ok := f.classes[sub.Endpoint]; ok {
		return push.Result{Class: class}
	}
	return push.Result{Class: push.ClassOK}
}

type fakeDeviceSender struct {
	failing map[string]bool
}

func (f *fakeDeviceSender) SendDevice(ctx context.Context, token *notification.DeviceToken, payload *notification.Payload) bool {
	return !f.failing[token.Token]
}

func makeSubs(n int) []*notification.WebPushSubscription {
	subs := make([]*notification.WebPushSubscription, n)
	for i := range subs {
		subs[i] = &notification.WebPushSubscription{Endpoint: fmt.Sprintf("https://push.example/sub-%d", i)}
	}
	return subs
}

func TestPushToSubscriptionsCountsAndCollectsStale(t *testing.T) {
	subs := makeSubs(5)
	sender := &fakePushSender{classes: map[string]push.StatusClass{
		subs[1].Endpoint: push.ClassGone,
		subs[3].Endpoint: push.ClassNotFound,
	}}

	svc := NewNotificationService(nil)
	svc.SetPushSender(sender)

	payload := &notification.Payload{Title: "Daily Nudge", Body: "Notice the loop."}
	successes, stale := svc.PushToSubscriptions(context.Background(), subs, payload)

	assert.Equal(t, 3, successes)
	assert.ElementsMatch(t, []string{subs[1].Endpoint, subs[3].Endpoint}, stale)
	// Every target was attempted; a dead endpoint never aborts the batch.
	assert.Len(t, sender.sent, 5)
}

func TestPushToSubscriptionsKeepsMalformedAndUnauthorized(t *testing.T) {
	subs := makeSubs(3)
	sender := &fakePushSender{classes: map[string]push.StatusClass{
		subs[0].Endpoint: push.ClassMalformed,
		subs[1].Endpoint: push.ClassUnauthorized,
	}}

	svc := NewNotificationService(nil)
	svc.SetPushSender(sender)

	successes, stale := svc.PushToSubscriptions(context.Background(), subs, &notification.Payload{Title: "t"})

	assert.Equal(t, 1, successes)
	assert.Empty(t, stale)
}

func TestPushToSubscriptionsWithoutSender(t *testing.T) {
	svc := NewNotificationService(nil)

	successes, stale := svc.PushToSubscriptions(context.Background(), makeSubs(4), &notification.Payload{Title: "t"})

	assert.Equal(t, 0, successes)
	assert.Empty(t, stale)
}

func TestPushToDevices(t *testing.T) {
	tokens := []*notification.DeviceToken{
		{Token: "tok-a"}, {Token: "tok-b"}, {Token: "tok-c"},
	}

	svc := NewNotificationService(nil)
	svc.SetDeviceSender(&fakeDeviceSender{failing: map[string]bool{"tok-b": true}})

	successes := svc.PushToDevices(context.Background(), tokens, &notification.Payload{Title: "t"})
	assert.Equal(t, 2, successes)

	// No sender registered means zero deliveries, not a panic.
	bare := NewNotificationService(nil)
	assert.Equal(t, 0, bare.PushToDevices(context.Background(), tokens, &notification.Payload{Title: "t"}))
}
