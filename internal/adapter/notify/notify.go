// Package notify provides the delivery-side implementations of the domain
// Notifier port: a Mailgun email sender, an HTTP push gateway client and a
// log-only fallback for environments without credentials.
package notify

import (
	"context"

	"github.com/nordtolk/booking/internal/domain"
)

// EmailSender delivers one rendered email.
type EmailSender interface {
	Send(ctx context.Context, to domain.EmailRecipient, subject, template string, data map[string]any) error
}

// PushSender delivers one push batch.
type PushSender interface {
	Send(ctx context.Context, userIDs []int64, jobID int64, payload domain.PushPayload, delayed bool) error
}

// Notifier combines an email and a push sender into the domain Notifier port.
type Notifier struct {
	email EmailSender
	push  PushSender
}

// New creates a Notifier from the two channel senders.
func New(email EmailSender, push PushSender) *Notifier {
	return &Notifier{email: email, push: push}
}

func (n *Notifier) SendEmail(ctx context.Context, to domain.EmailRecipient, subject, template string, data map[string]any) error {
	return n.email.Send(ctx, to, subject, template, data)
}

func (n *Notifier) SendPush(ctx context.Context, userIDs []int64, jobID int64, payload domain.PushPayload, delayed bool) error {
	return n.push.Send(ctx, userIDs, jobID, payload, delayed)
}
