package notify

import (
	"context"
	"fmt"

	"github.com/mailjet/mailjet-apiv3-go"

	"smartsquare-server/models"
)

type mailjetSender interface {
	SendMailV31(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error)
}

// emailTypes are the notifications important enough to also go out by email.
var emailTypes = map[models.NotificationType]bool{
	models.ApplicationReceived:        true,
	models.ApplicationAccepted:        true,
	models.ApplicationRejected:        true,
	models.NotifyVerificationApproved: true,
	models.NotifyVerificationRejected: true,
}

type MailjetMailer struct {
	client   mailjetSender
	fromAddr string
	fromName string
}

func NewMailjetMailer(apiKey, apiSecret, fromAddr, fromName string) *MailjetMailer {
	return &MailjetMailer{
		client:   mailjet.NewMailjetClient(apiKey, apiSecret),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

func (m *MailjetMailer) Dispatch(_ context.Context, ev Event) error {
	if !ev.AllowsNotifications || ev.Email == "" || !emailTypes[ev.Notification.NotificationType] {
		return nil
	}

	messages := mailjet.MessagesV31{Info: []mailjet.InfoMessagesV31{{
		From: &mailjet.RecipientV31{
			Email: m.fromAddr,
			Name:  m.fromName,
		},
		To: &mailjet.RecipientsV31{
			mailjet.RecipientV31{
				Email: ev.Email,
				Name:  ev.FullName,
			},
		},
		Subject:  ev.Notification.Title,
		TextPart: ev.Notification.Message,
		CustomID: ev.Notification.ID.String(),
	}}}

	if _, err := m.client.SendMailV31(&messages); err != nil {
		return fmt.Errorf("failed to email notification %s: %w", ev.Notification.ID, err)
	}
	return nil
}
