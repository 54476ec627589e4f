package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mailgun/mailgun-go/v4"

	"github.com/nordtolk/booking/internal/domain"
)

const mailgunTimeout = 30 * time.Second

// MailgunConfig holds the Mailgun credentials and sender identity.
type MailgunConfig struct {
	Key    string
	Domain string
	From   string
}

func (c MailgunConfig) validate() error {
	if c.Key == "" || c.Domain == "" || c.From == "" {
		return errors.New("invalid mailgun configuration")
	}
	return nil
}

// MailgunSender implements EmailSender via the Mailgun API. The template name
// and data are passed through; rendering happens on the Mailgun side.
type MailgunSender struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunSender creates a MailgunSender.
func NewMailgunSender(cfg MailgunConfig) (*MailgunSender, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &MailgunSender{mg: mailgun.NewMailgun(cfg.Domain, cfg.Key), from: cfg.From}, nil
}

func (s *MailgunSender) Send(ctx context.Context, to domain.EmailRecipient, subject, template string, data map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()

	message := s.mg.NewMessage(s.from, subject, "")
	message.SetTemplate(template)
	recipient := to.Email
	if to.Name != "" {
		recipient = fmt.Sprintf("%s <%s>", to.Name, to.Email)
	}
	if err := message.AddRecipient(recipient); err != nil {
		return errors.Wrap(err, "failed to add recipient")
	}
	for key, value := range data {
		message.AddVariable(key, value)
	}

	_, _, err := s.mg.Send(ctx, message)
	return errors.Wrap(err, "failed to send email")
}
