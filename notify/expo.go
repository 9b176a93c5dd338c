package notify

import (
	"context"
	"fmt"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
)

type pushPublisher interface {
	Publish(message *expo.PushMessage) (expo.PushResponse, error)
}

// ExpoPusher sends the notification to every Expo push token registered by
// the recipient.
type ExpoPusher struct {
	client pushPublisher
}

func NewExpoPusher() *ExpoPusher {
	return &ExpoPusher{client: expo.NewPushClient(nil)}
}

func (p *ExpoPusher) Dispatch(_ context.Context, ev Event) error {
	if !ev.AllowsNotifications || len(ev.PushTokens) == 0 {
		return nil
	}

	var to []expo.ExponentPushToken
	for _, raw := range ev.PushTokens {
		token, err := expo.NewExponentPushToken(raw)
		if err != nil {
			continue
		}
		to = append(to, token)
	}
	if len(to) == 0 {
		return nil
	}

	data := map[string]string{
		"notificationId": ev.Notification.ID.String(),
		"type":           string(ev.Notification.NotificationType),
	}
	for k, v := range ev.Notification.Metadata {
		if s, ok := v.(string); ok {
			data[k] = s
		}
	}

	response, err := p.client.Publish(&expo.PushMessage{
		To:       to,
		Title:    ev.Notification.Title,
		Body:     ev.Notification.Message,
		Data:     data,
		Sound:    "default",
		Priority: expo.DefaultPriority,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification %s: %w", ev.Notification.ID, err)
	}
	if err := response.ValidateResponse(); err != nil {
		return fmt.Errorf("push for notification %s was rejected: %w", ev.Notification.ID, err)
	}
	return nil
}
