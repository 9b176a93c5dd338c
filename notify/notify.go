// Package notify delivers stored notifications to channels outside the
// database: realtime fan-out, email and mobile push.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/kataras/golog"

	"smartsquare-server/models"
)

// Event is a committed notification together with the recipient details the
// channels need.
type Event struct {
	Notification        models.Notification
	Email               string
	FullName            string
	PushTokens          []string
	AllowsNotifications bool
}

// NewEvent builds an Event for n addressed to recipient.
func NewEvent(n models.Notification, recipient *models.User) Event {
	return Event{
		Notification:        n,
		Email:               recipient.Email,
		FullName:            recipient.FullName,
		PushTokens:          recipient.Tokens(),
		AllowsNotifications: recipient.AllowsNotifications,
	}
}

// Dispatcher delivers one event to a channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// Composite fans an event out to every registered dispatcher and joins their
// errors.
type Composite struct {
	dispatchers []Dispatcher
}

func NewComposite(dispatchers ...Dispatcher) *Composite {
	c := &Composite{}
	for _, d := range dispatchers {
		c.Add(d)
	}
	return c
}

func (c *Composite) Add(d Dispatcher) {
	if d != nil {
		c.dispatchers = append(c.dispatchers, d)
	}
}

func (c *Composite) Len() int { return len(c.dispatchers) }

func (c *Composite) Dispatch(ctx context.Context, ev Event) error {
	var failures []string
	for _, d := range c.dispatchers {
		if err := d.Dispatch(ctx, ev); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("notification dispatch failed: [ %s ]", strings.Join(failures, "; "))
	}
	return nil
}

// Logger only logs the event. It is the dispatcher used when no external
// channel is configured.
type Logger struct{}

func (Logger) Dispatch(_ context.Context, ev Event) error {
	golog.Debugf("notification %s (%s) for user %s: %s",
		ev.Notification.ID, ev.Notification.NotificationType, ev.Notification.UserID, ev.Notification.Title)
	return nil
}
