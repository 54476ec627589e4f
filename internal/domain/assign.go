package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// AcceptResult is the successful outcome of an accept: the confirmed job plus
// the translator's refreshed eligible-job list, so the caller can update its
// view without a second fetch.
type AcceptResult struct {
	Job           *Job
	PotentialJobs []Job
	Message       string
}

// Accept assigns a pending job to the translator. The relation insert and the
// pending-to-assigned transition are one atomic store operation; when two
// translators race, exactly one wins and the loser gets a ConflictError with
// reason ConflictAlreadyAssigned. A translator holding another active booking
// overlapping this job's due window is refused with
// ConflictTranslatorDoubleBooked before the swap is attempted.
func (s *Service) Accept(ctx context.Context, jobID, translatorID int64) (*AcceptResult, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.TranslatorByID(ctx, translatorID); err != nil {
		return nil, err
	}

	booked, err := s.hasOverlappingBooking(ctx, translatorID, job.Due, job.Duration)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, &ConflictError{
			Reason: ConflictTranslatorDoubleBooked,
			Message: fmt.Sprintf("Du har redan en bokning den tiden %s. Du har inte fått denna tolkning",
				job.Due.Format("2006-01-02 15:04:05")),
		}
	}

	language := s.languageName(ctx, job.FromLanguageID)

	ok, err := s.jobs.InsertRelationIfPending(ctx, jobID, translatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to assign job")
	}
	if !ok {
		return nil, &ConflictError{
			Reason: ConflictAlreadyAssigned,
			Message: fmt.Sprintf("Denna %stolkning %dmin %s har redan accepterats av annan tolk. Du har inte fått denna tolkning",
				language, job.Duration, job.Due.Format("2006-01-02 15:04:05")),
		}
	}

	job.Status = StatusAssigned
	job.UpdatedAt = s.clock.Now()
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	s.logger.Info("booking accepted",
		zap.Int64("job_id", jobID),
		zap.Int64("translator_id", translatorID))

	intents := s.acceptedIntents(ctx, job, language)
	s.dispatcher.Dispatch(ctx, intents)

	potential, err := s.PotentialJobs(ctx, translatorID)
	if err != nil {
		// The assignment is committed; a stale list is not worth failing over.
		s.logger.Warn("potential job refresh failed", zap.Int64("translator_id", translatorID), zap.Error(err))
		potential = nil
	}

	return &AcceptResult{
		Job:           job,
		PotentialJobs: potential,
		Message: fmt.Sprintf("Du har nu accepterat och fått bokningen för %stolk %dmin %s",
			language, job.Duration, job.Due.Format("2006-01-02 15:04:05")),
	}, nil
}

// acceptedIntents plans the customer-side confirmation: the acceptance email
// and the "your booking was accepted" push.
func (s *Service) acceptedIntents(ctx context.Context, job *Job, language string) Intents {
	var intents Intents
	customer, err := s.users.CustomerByID(ctx, job.CustomerID)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.Int64("customer_id", job.CustomerID), zap.Error(err))
		return intents
	}
	intents.addEmail(EmailIntent{
		To:       s.recipientFor(job, customer),
		Subject:  fmt.Sprintf("Bekräftelse - tolk har accepterat er bokning (bokning # %d)", job.ID),
		Template: "emails.job-accepted",
		Data:     map[string]any{"user": customer.Name, "job": job.ID},
	})
	payload := NewPushPayload(job, "job_accepted", msgAcceptedPush(language, job))
	intents.addPush(NewPushIntent([]int64{customer.UserID}, job.ID, payload))
	return intents
}

// hasOverlappingBooking reports whether the translator already holds an
// active assignment whose due window overlaps [due, due+duration).
func (s *Service) hasOverlappingBooking(ctx context.Context, translatorID int64, due time.Time, duration int) (bool, error) {
	rels, err := s.jobs.RelationsByTranslator(ctx, translatorID)
	if err != nil {
		return false, errors.Wrap(err, "failed to list translator relations")
	}
	start := due
	end := due.Add(time.Duration(duration) * time.Minute)
	for i := range rels {
		if !rels[i].Active() {
			continue
		}
		other, err := s.jobs.JobByID(ctx, rels[i].JobID)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				continue
			}
			return false, err
		}
		otherStart := other.Due
		otherEnd := other.Due.Add(time.Duration(other.Duration) * time.Minute)
		if start.Before(otherEnd) && otherStart.Before(end) {
			return true, nil
		}
	}
	return false, nil
}
