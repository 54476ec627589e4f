package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// SessionTime formats the elapsed session (completion minus due) as h:mm:ss.
// A session closed before its due time counts as zero.
func SessionTime(due, completed time.Time) string {
	elapsed := completed.Sub(due)
	if elapsed < 0 {
		elapsed = 0
	}
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	sec := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}

// sessionDisplay renders the session time the way the emails show it.
func sessionDisplay(sessionTime string) string {
	var h, m, sec int
	fmt.Sscanf(sessionTime, "%d:%d:%d", &h, &m, &sec)
	return fmt.Sprintf("%d tim %d min", h, m)
}

// End finalizes a session: computes the elapsed duration, marks the job
// completed, closes the active relation with the acting user as completer and
// sends the two completion emails — invoice framing to the customer, payout
// framing to the translator. Ending a job that is not assigned or started is
// an idempotent no-op returning the job unchanged.
func (s *Service) End(ctx context.Context, jobID, actingUserID int64) (*Job, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != StatusStarted && job.Status != StatusAssigned {
		return job, nil
	}

	now := s.clock.Now()
	job.SessionTime = SessionTime(job.Due, now)
	job.EndAt = now
	job.Status = StatusCompleted
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	rel, err := s.jobs.ActiveRelation(ctx, jobID)
	if err != nil {
		if !errors.Is(err, ErrRelationNotFound) {
			return nil, errors.Wrap(err, "failed to load active relation")
		}
		s.logger.Warn("session ended without an active relation", zap.Int64("job_id", jobID))
		return job, nil
	}
	rel.CompletedAt = &now
	rel.CompletedBy = actingUserID
	if err := s.jobs.SaveRelation(ctx, rel); err != nil {
		return nil, errors.Wrap(err, "failed to close relation")
	}

	// The counterpart of whoever ended the session is the one the
	// session-ended event is addressed to.
	counterpart := rel.TranslatorID
	if actingUserID != job.CustomerID {
		counterpart = job.CustomerID
	}
	s.logger.Info("session ended",
		zap.Int64("job_id", jobID),
		zap.Int64("ended_by", actingUserID),
		zap.Int64("counterpart", counterpart),
		zap.String("session_time", job.SessionTime))

	s.dispatcher.Dispatch(ctx, s.sessionEndedIntents(ctx, job, rel))
	return job, nil
}

// sessionEndedIntents plans the dual completion emails: same facts, invoice
// framing for the customer and payout framing for the translator.
func (s *Service) sessionEndedIntents(ctx context.Context, job *Job, rel *TranslatorJobRelation) Intents {
	var intents Intents
	subject := fmt.Sprintf("Information om avslutad tolkning för bokningsnummer # %d", job.ID)
	session := sessionDisplay(job.SessionTime)

	if customer, err := s.users.CustomerByID(ctx, job.CustomerID); err != nil {
		s.logger.Warn("customer lookup failed", zap.Int64("customer_id", job.CustomerID), zap.Error(err))
	} else {
		intents.addEmail(EmailIntent{
			To:       s.recipientFor(job, customer),
			Subject:  subject,
			Template: "emails.session-ended",
			Data:     map[string]any{"user": customer.Name, "job": job.ID, "session_time": session, "for_text": "faktura"},
		})
	}

	if translator, err := s.users.TranslatorByID(ctx, rel.TranslatorID); err != nil {
		s.logger.Warn("translator lookup failed", zap.Int64("translator_id", rel.TranslatorID), zap.Error(err))
	} else {
		intents.addEmail(EmailIntent{
			To:       EmailRecipient{Email: translator.Email, Name: translator.Name},
			Subject:  subject,
			Template: "emails.session-ended",
			Data:     map[string]any{"user": translator.Name, "job": job.ID, "session_time": session, "for_text": "lön"},
		})
	}
	return intents
}

// CustomerNotCall closes a no-show: the relation is completed by its own
// translator, the job becomes not_carried_out_customer and nothing is
// notified. Closing an already-terminal job is an idempotent no-op.
func (s *Service) CustomerNotCall(ctx context.Context, jobID int64) (*Job, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return job, nil
	}

	now := s.clock.Now()
	job.EndAt = now
	job.Status = StatusNotCarriedOutByCust
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	rel, err := s.jobs.ActiveRelation(ctx, jobID)
	if err != nil {
		if !errors.Is(err, ErrRelationNotFound) {
			return nil, errors.Wrap(err, "failed to load active relation")
		}
		return job, nil
	}
	rel.CompletedAt = &now
	rel.CompletedBy = rel.TranslatorID
	if err := s.jobs.SaveRelation(ctx, rel); err != nil {
		return nil, errors.Wrap(err, "failed to close relation")
	}

	s.logger.Info("booking closed as customer no-show", zap.Int64("job_id", jobID))
	return job, nil
}
