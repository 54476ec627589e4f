package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/nordtolk/booking/internal/domain"
)

// LogSender implements both EmailSender and PushSender by logging deliveries.
// It stands in when no mailgun key or push gateway is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to domain.EmailRecipient, subject, template string, data map[string]any) error {
	s.logger.Info("email (dry run)",
		zap.String("to", to.Email),
		zap.String("subject", subject),
		zap.String("template", template))
	return nil
}

// logPush is the push-side view; the two Send signatures collide, so the
// LogSender exposes it through Push().
type logPush struct{ logger *zap.Logger }

// Push returns a PushSender logging to the same logger.
func (s *LogSender) Push() PushSender { return logPush{logger: s.logger} }

func (p logPush) Send(ctx context.Context, userIDs []int64, jobID int64, payload domain.PushPayload, delayed bool) error {
	p.logger.Info("push (dry run)",
		zap.Int64("job_id", jobID),
		zap.Int("recipients", len(userIDs)),
		zap.Bool("delayed", delayed),
		zap.String("type", payload.NotificationType))
	return nil
}
