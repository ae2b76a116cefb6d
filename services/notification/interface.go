package notification

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

var ErrNoDeviceToken = errors.New("no device token")

// Sender is the part of the FCM messaging client used here.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushService delivers booking pushes to a device.
type PushService interface {
	Push(ctx context.Context, token string, msg Message) error
}

// Message is a rendered push notification.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// FCMPushService sends pushes through Firebase Cloud Messaging.
type FCMPushService struct {
	client Sender
	logger *zap.Logger
}

func NewFCMPushService(client Sender, logger *zap.Logger) *FCMPushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMPushService{client: client, logger: logger}
}

// Push sends msg to token with high priority on both platforms.
func (s *FCMPushService) Push(ctx context.Context, token string, msg Message) error {
	if token == "" {
		return ErrNoDeviceToken
	}
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	if _, ok := data["role"]; !ok {
		data["role"] = "user"
	}

	fcm := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.client.Send(ctx, fcm)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	s.logger.Debug("push sent", zap.String("messageId", id), zap.String("type", data["type"]))
	return nil
}
