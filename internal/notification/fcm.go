// Package notification holds the FCM mobile push provider. Credentials come
// from FCM_SERVICE_ACCOUNT_JSON (base64) or a local service account file;
// without either the caller falls back to the no-op provider and mobile
// pushes are counted as non-successes.
package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"cavemindAPI/internal/types/notification"
)

// DeviceSender delivers one payload to one registered device. A failed
// delivery is reported as ok=false, never as a batch-fatal error.
type DeviceSender interface {
	SendDevice(ctx context.Context, token *notification.DeviceToken, payload *notification.Payload) bool
}

type FCMService struct {
	client *messaging.Client
}

// NewFCMService builds the messaging client from FCM_SERVICE_ACCOUNT_JSON
// (base64 encoded) or, failing that, from localFilePath.
func NewFCMService(localFilePath string) (*FCMService, error) {
	var opt option.ClientOption

	if encoded := os.Getenv("FCM_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("no FCM credentials: %s missing and FCM_SERVICE_ACCOUNT_JSON unset", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
	}

	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

func (s *FCMService) SendDevice(ctx context.Context, token *notification.DeviceToken, payload *notification.Payload) bool {
	msg := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	}
	if payload.Link != "" {
		msg.Data = map[string]string{"link": payload.Link}
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		log.Printf("fcm: failed to send to token %s: %v", token.Token, err)
		return false
	}
	return true
}

// NoopDeviceSender stands in when FCM is not configured.
type NoopDeviceSender struct{}

func (NoopDeviceSender) SendDevice(ctx context.Context, token *notification.DeviceToken, payload *notification.Payload) bool {
	log.Printf("fcm: not configured, skipping device %s", token.Token)
	return false
}
