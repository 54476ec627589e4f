package domain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// UpdateJobRequest carries an administrative edit. Zero values mean "leave
// unchanged" for the reassignment fields; AdminComments and Reference are
// always overwritten.
type UpdateJobRequest struct {
	Due            time.Time
	TranslatorID   int64
	FromLanguageID int64
	Status         JobStatus
	AdminComments  string
	Reference      string
}

// UpdateResult reports which change classes actually applied. Silent marks a
// past-due save where every notification was suppressed.
type UpdateResult struct {
	Job               *Job
	Silent            bool
	DateChanged       bool
	TranslatorChanged bool
	LanguageChanged   bool
	StatusChanged     bool
}

var knownStatuses = map[JobStatus]bool{
	StatusPending:             true,
	StatusAssigned:            true,
	StatusStarted:             true,
	StatusCompleted:           true,
	StatusWithdrawnBefore24:   true,
	StatusWithdrawnAfter24:    true,
	StatusNotCarriedOutByCust: true,
}

// Update reconciles an administrative edit against the stored job. Four
// change classes are detected independently — translator reassignment, due
// date, source language, status — and each produces an old/new audit entry in
// one per-update batch. The job is always saved; when the new due time is
// already in the past the update is silent and no notifications go out, even
// if other classes changed in the same call.
func (s *Service) Update(ctx context.Context, jobID int64, req UpdateJobRequest, actor Actor) (*UpdateResult, error) {
	job, err := s.jobs.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if req.Status != "" && !knownStatuses[req.Status] {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)}
	}

	now := s.clock.Now()
	current, err := s.currentTranslator(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res := &UpdateResult{Job: job}
	var changes []FieldChange
	var oldDue time.Time
	var oldLang int64

	if req.TranslatorID != 0 && (current == nil || current.TranslatorID != req.TranslatorID) {
		var oldID string
		if current != nil {
			oldID = strconv.FormatInt(current.TranslatorID, 10)
			if current.Active() {
				current.CancelAt = &now
				if err := s.jobs.SaveRelation(ctx, current); err != nil {
					return nil, errors.Wrap(err, "failed to cancel previous relation")
				}
			}
		}
		rel := &TranslatorJobRelation{JobID: jobID, TranslatorID: req.TranslatorID, CreatedAt: now}
		if _, err := s.jobs.CreateRelation(ctx, rel); err != nil {
			return nil, errors.Wrap(err, "failed to create relation")
		}
		changes = append(changes, FieldChange{Field: "translator", Old: oldID, New: strconv.FormatInt(req.TranslatorID, 10)})
		res.TranslatorChanged = true
	}

	if !req.Due.IsZero() && !req.Due.Equal(job.Due) {
		oldDue = job.Due
		changes = append(changes, FieldChange{
			Field: "due",
			Old:   oldDue.Format("2006-01-02 15:04:05"),
			New:   req.Due.Format("2006-01-02 15:04:05"),
		})
		job.Due = req.Due
		res.DateChanged = true
	}

	if req.FromLanguageID != 0 && req.FromLanguageID != job.FromLanguageID {
		oldLang = job.FromLanguageID
		changes = append(changes, FieldChange{
			Field: "from_language",
			Old:   s.languageName(ctx, oldLang),
			New:   s.languageName(ctx, req.FromLanguageID),
		})
		job.FromLanguageID = req.FromLanguageID
		res.LanguageChanged = true
	}

	if req.Status != "" && req.Status != job.Status {
		changes = append(changes, FieldChange{Field: "status", Old: string(job.Status), New: string(req.Status)})
		job.Status = req.Status
		res.StatusChanged = true
	}

	job.AdminComments = req.AdminComments
	job.Reference = req.Reference
	job.UpdatedAt = now
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	if len(changes) > 0 {
		if err := s.audit.Record(ctx, actor.ID, jobID, changes); err != nil {
			s.logger.Error("audit record failed", zap.Int64("job_id", jobID), zap.Error(err))
		}
	}
	s.logger.Info("booking updated",
		zap.Int64("job_id", jobID),
		zap.Int64("actor_id", actor.ID),
		zap.Int("changes", len(changes)))

	// Administrative backfill: edits landing in the past save silently.
	if !job.Due.After(now) {
		res.Silent = true
		return res, nil
	}

	s.dispatcher.Dispatch(ctx, s.updateIntents(ctx, job, res, current, req.TranslatorID, oldDue, oldLang))
	return res, nil
}

// currentTranslator resolves the relation used as the reassignment reference
// point: the active relation when one exists, otherwise the most recently
// completed one.
func (s *Service) currentTranslator(ctx context.Context, jobID int64) (*TranslatorJobRelation, error) {
	rel, err := s.jobs.ActiveRelation(ctx, jobID)
	if err == nil {
		return rel, nil
	}
	if !errors.Is(err, ErrRelationNotFound) {
		return nil, errors.Wrap(err, "failed to load active relation")
	}
	rel, err = s.jobs.LatestCompletedRelation(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrRelationNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load completed relation")
	}
	return rel, nil
}

// updateIntents plans the at-most-three change emails, each gated on whether
// its change class actually occurred.
func (s *Service) updateIntents(ctx context.Context, job *Job, res *UpdateResult, previous *TranslatorJobRelation, newTranslatorID int64, oldDue time.Time, oldLang int64) Intents {
	var intents Intents
	customer, err := s.users.CustomerByID(ctx, job.CustomerID)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.Int64("customer_id", job.CustomerID), zap.Error(err))
		return intents
	}
	to := s.recipientFor(job, customer)

	if res.DateChanged {
		intents.addEmail(EmailIntent{
			To:       to,
			Subject:  fmt.Sprintf("Meddelande om ändring av tolkbokning för uppdrag # %d", job.ID),
			Template: "emails.job-changed-date",
			Data: map[string]any{
				"user":     customer.Name,
				"job":      job.ID,
				"old_time": oldDue.Format("2006-01-02 15:04:05"),
			},
		})
	}

	if res.TranslatorChanged {
		intents.addEmail(EmailIntent{
			To:       to,
			Subject:  fmt.Sprintf("Meddelande om ändring av tolkbokning för uppdrag # %d", job.ID),
			Template: "emails.job-changed-translator-customer",
			Data:     map[string]any{"user": customer.Name, "job": job.ID},
		})
		if translator, err := s.users.TranslatorByID(ctx, newTranslatorID); err == nil {
			intents.addEmail(EmailIntent{
				To:       EmailRecipient{Email: translator.Email, Name: translator.Name},
				Subject:  fmt.Sprintf("Meddelande om tilldelning av tolkuppdrag för uppdrag # %d", job.ID),
				Template: "emails.job-changed-translator-new-translator",
				Data:     map[string]any{"user": translator.Name, "job": job.ID},
			})
		}
		if previous != nil {
			if translator, err := s.users.TranslatorByID(ctx, previous.TranslatorID); err == nil {
				intents.addEmail(EmailIntent{
					To:       EmailRecipient{Email: translator.Email, Name: translator.Name},
					Subject:  fmt.Sprintf("Meddelande om avbokad tolkning för uppdrag # %d", job.ID),
					Template: "emails.job-changed-translator-old-translator",
					Data:     map[string]any{"user": translator.Name, "job": job.ID},
				})
			}
		}
	}

	if res.LanguageChanged {
		intents.addEmail(EmailIntent{
			To:       to,
			Subject:  fmt.Sprintf("Meddelande om ändring av tolkbokning för uppdrag # %d", job.ID),
			Template: "emails.job-changed-lang",
			Data: map[string]any{
				"user":     customer.Name,
				"job":      job.ID,
				"old_lang": s.languageName(ctx, oldLang),
			},
		})
	}
	return intents
}
