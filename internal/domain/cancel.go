package domain

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// cancelWindow is the threshold separating free-form cancellation from the
// locked window before a session.
const cancelWindow = 24 * time.Hour

// Cancel withdraws a booking on behalf of the acting user.
//
// Customer-initiated cancellation always succeeds on a live job and is
// terminal: at or beyond 24 hours before due it resolves to
// withdrawn_before_24, closer than that to withdrawn_after_24. An assigned
// translator is notified.
//
// Translator-initiated cancellation more than 24 hours out reopens the job:
// status returns to pending, the expiry deadline is recomputed from the
// original due time, the relation is purged and the job is re-broadcast to
// eligible translators while the customer is told their translator dropped
// out. Within 24 hours it is refused outright; the translator must cancel by
// phone.
//
// Both branches measure the same quantity, time remaining until due
// (due minus now), so the two policies share one boundary definition.
func (s *Service) Cancel(ctx context.Context, jobID int64, actor Actor) (*Job, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, &InvalidTransitionError{JobID: jobID, From: job.Status, Action: "cancel"}
	}

	now := s.clock.Now()
	untilDue := job.Due.Sub(now)

	rel, err := s.jobs.ActiveRelation(ctx, jobID)
	if err != nil && !errors.Is(err, ErrRelationNotFound) {
		return nil, errors.Wrap(err, "failed to load active relation")
	}

	if actor.Role == RoleCustomer {
		return s.cancelByCustomer(ctx, job, rel, now, untilDue)
	}
	return s.cancelByTranslator(ctx, job, rel, actor, now, untilDue)
}

func (s *Service) cancelByCustomer(ctx context.Context, job *Job, rel *TranslatorJobRelation, now time.Time, untilDue time.Duration) (*Job, error) {
	job.WithdrawAt = now
	if untilDue >= cancelWindow {
		job.Status = StatusWithdrawnBefore24
	} else {
		job.Status = StatusWithdrawnAfter24
	}
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	s.logger.Info("booking withdrawn by customer",
		zap.Int64("job_id", job.ID),
		zap.String("status", string(job.Status)))

	if rel != nil {
		language := s.languageName(ctx, job.FromLanguageID)
		payload := NewPushPayload(job, "job_cancelled", msgCustomerCancelledPush(language, job))
		var intents Intents
		intents.addPush(NewPushIntent([]int64{rel.TranslatorID}, job.ID, payload))
		s.dispatcher.Dispatch(ctx, intents)
	}
	return job, nil
}

func (s *Service) cancelByTranslator(ctx context.Context, job *Job, rel *TranslatorJobRelation, actor Actor, now time.Time, untilDue time.Duration) (*Job, error) {
	if rel == nil {
		return nil, &InvalidTransitionError{JobID: job.ID, From: job.Status, Action: "cancel"}
	}
	if untilDue <= cancelWindow {
		return nil, &ConflictError{Reason: ConflictWithin24Hours, Message: msgCancelBy24Rule}
	}

	job.Status = StatusPending
	job.CreatedAt = now
	job.WillExpireAt = WillExpireAt(job.Due, now)
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}
	if err := s.jobs.PurgeRelation(ctx, rel.TranslatorID, job.ID); err != nil {
		return nil, errors.Wrap(err, "failed to purge relation")
	}

	s.logger.Info("booking reopened after translator cancellation",
		zap.Int64("job_id", job.ID),
		zap.Int64("translator_id", rel.TranslatorID),
		zap.Time("will_expire_at", job.WillExpireAt))

	var intents Intents
	language := s.languageName(ctx, job.FromLanguageID)
	if customer, err := s.users.CustomerByID(ctx, job.CustomerID); err != nil {
		s.logger.Warn("customer lookup failed", zap.Int64("customer_id", job.CustomerID), zap.Error(err))
	} else {
		payload := NewPushPayload(job, "job_cancelled", msgTranslatorCancelledPush(language, job))
		intents.addPush(NewPushIntent([]int64{customer.UserID}, job.ID, payload))
	}
	if push, err := s.broadcastIntent(ctx, job, rel.TranslatorID); err != nil {
		s.logger.Warn("broadcast planning failed", zap.Int64("job_id", job.ID), zap.Error(err))
	} else if len(push.UserIDs) > 0 {
		intents.addPush(push)
	}
	s.dispatcher.Dispatch(ctx, intents)

	return job, nil
}
