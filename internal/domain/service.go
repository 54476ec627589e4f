package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultImmediateLead is how far ahead an immediate booking is due.
const DefaultImmediateLead = 5 * time.Minute

// Service owns the booking lifecycle: creation, matching, assignment,
// cancellation, session close and administrative edits. Each operation is one
// transactional step; notification intents are computed alongside the
// transition and dispatched only after the state change is committed.
type Service struct {
	jobs        JobStore
	users       UserStore
	langs       LanguageLookup
	audit       AuditSink
	dispatcher  *Dispatcher
	eligibility Eligibility
	clock       Clock
	logger      *zap.Logger

	immediateLead time.Duration
}

// NewService creates a Service. clock and logger must be non-nil; pass
// SystemClock{} and zap.NewNop() when no specific instance is needed.
func NewService(jobs JobStore, users UserStore, langs LanguageLookup, audit AuditSink, dispatcher *Dispatcher, clock Clock, logger *zap.Logger) *Service {
	return &Service{
		jobs:          jobs,
		users:         users,
		langs:         langs,
		audit:         audit,
		dispatcher:    dispatcher,
		eligibility:   NewEligibility(),
		clock:         clock,
		logger:        logger,
		immediateLead: DefaultImmediateLead,
	}
}

// SetImmediateLead overrides the immediate booking lead time.
func (s *Service) SetImmediateLead(d time.Duration) { s.immediateLead = d }

// Create validates the booking request and persists a new pending job. Only
// customer-role actors may create bookings. Nothing is notified here; the
// confirmation email and translator broadcast follow in AttachEmail once the
// contact details are known.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateJobRequest) (*Job, error) {
	if actor.Role != RoleCustomer {
		return nil, &ValidationError{Message: msgNotACustomer}
	}
	customer, err := s.users.CustomerByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	job, err := BuildJob(req, customer, s.clock.Now(), s.immediateLead)
	if err != nil {
		return nil, err
	}

	id, err := s.jobs.CreateJob(ctx, job)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create job")
	}
	job.ID = id

	s.logger.Info("booking created",
		zap.Int64("job_id", job.ID),
		zap.Int64("customer_id", job.CustomerID),
		zap.String("job_type", string(job.JobType)),
		zap.Bool("immediate", job.Immediate),
		zap.Time("due", job.Due))

	return job, nil
}

// JobEmailRequest attaches booking contact details to a fresh job.
type JobEmailRequest struct {
	JobID        int64
	UserEmail    string
	Reference    string
	Address      string
	Instructions string
	Town         string
	AddressSet   bool
}

// AttachEmail stores the booking's contact email and address details, falling
// back to the customer profile where fields are blank, sends the booking
// confirmation email and broadcasts the job to eligible translators.
func (s *Service) AttachEmail(ctx context.Context, req JobEmailRequest) (*Job, error) {
	job, err := s.jobs.JobByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	customer, err := s.users.CustomerByID(ctx, job.CustomerID)
	if err != nil {
		return nil, err
	}

	job.UserEmail = req.UserEmail
	job.Reference = req.Reference
	if req.AddressSet {
		job.Address = orDefault(req.Address, customer.Address)
		job.Instructions = orDefault(req.Instructions, customer.Instructions)
		job.Town = orDefault(req.Town, customer.Town)
	}
	job.UpdatedAt = s.clock.Now()
	if err := s.jobs.SaveJob(ctx, job); err != nil {
		return nil, errors.Wrap(err, "failed to save job")
	}

	var intents Intents
	intents.addEmail(EmailIntent{
		To:       s.recipientFor(job, customer),
		Subject:  fmt.Sprintf("Vi har mottagit er tolkbokning. Bokningsnr: #%d", job.ID),
		Template: "emails.job-created",
		Data:     map[string]any{"user": customer.Name, "job": job.ID},
	})
	if push, err := s.broadcastIntent(ctx, job, 0); err != nil {
		s.logger.Warn("broadcast planning failed", zap.Int64("job_id", job.ID), zap.Error(err))
	} else if len(push.UserIDs) > 0 {
		intents.addPush(push)
	}
	s.dispatcher.Dispatch(ctx, intents)

	return job, nil
}

// Job returns a booking by id.
func (s *Service) Job(ctx context.Context, id int64) (*Job, error) {
	return s.jobs.JobByID(ctx, id)
}

// PotentialJobs computes the pending jobs the translator may accept.
func (s *Service) PotentialJobs(ctx context.Context, translatorID int64) ([]Job, error) {
	translator, err := s.users.TranslatorByID(ctx, translatorID)
	if err != nil {
		return nil, err
	}
	pending, err := s.jobs.PendingJobsByType(ctx, JobTypeFor(translator.Type))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pending jobs")
	}

	townOf := make(map[int64]string)
	for i := range pending {
		customerID := pending[i].CustomerID
		if _, ok := townOf[customerID]; ok {
			continue
		}
		customer, err := s.users.CustomerByID(ctx, customerID)
		if err != nil {
			// Unknown customer fails the town rule closed for that job only.
			s.logger.Warn("customer lookup failed", zap.Int64("customer_id", customerID), zap.Error(err))
			continue
		}
		townOf[customerID] = customer.Town
	}

	return s.eligibility.FilterJobs(translator, pending, townOf), nil
}

// SweepExpired lists pending bookings whose expiry deadline has passed. The
// sweeper surfaces them; the booking itself stays pending so a late translator
// can still pick it up.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) ([]Job, error) {
	jobs, err := s.jobs.ExpiredPendingJobs(ctx, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list expired jobs")
	}
	return jobs, nil
}

// EligibleTranslators computes the broadcast audience for a job.
func (s *Service) EligibleTranslators(ctx context.Context, job *Job) ([]TranslatorProfile, error) {
	customer, err := s.users.CustomerByID(ctx, job.CustomerID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.users.TranslatorsByType(ctx, translatorTypeFor(job.JobType))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list translators")
	}
	return s.eligibility.FilterTranslators(job, customer.Town, candidates), nil
}

// broadcastIntent plans the new-booking push to every eligible translator,
// excluding excludeID (the translator who just cancelled, on re-broadcast).
func (s *Service) broadcastIntent(ctx context.Context, job *Job, excludeID int64) (PushIntent, error) {
	eligible, err := s.EligibleTranslators(ctx, job)
	if err != nil {
		return PushIntent{}, err
	}
	ids := make([]int64, 0, len(eligible))
	for i := range eligible {
		if eligible[i].UserID == excludeID {
			continue
		}
		ids = append(ids, eligible[i].UserID)
	}
	language := s.languageName(ctx, job.FromLanguageID)
	payload := NewPushPayload(job, "suitable_job", msgNewJobPush(language, job))
	return NewPushIntent(ids, job.ID, payload), nil
}

// languageName resolves a language id, degrading to the numeric id when the
// lookup fails so a notification never blocks on the lookup table.
func (s *Service) languageName(ctx context.Context, languageID int64) string {
	name, err := s.langs.NameFor(ctx, languageID)
	if err != nil {
		s.logger.Warn("language lookup failed", zap.Int64("language_id", languageID), zap.Error(err))
		return fmt.Sprintf("språk %d", languageID)
	}
	return name
}

func (s *Service) recipientFor(job *Job, customer *CustomerProfile) EmailRecipient {
	email := job.UserEmail
	if email == "" {
		email = customer.Email
	}
	return EmailRecipient{Email: email, Name: customer.Name}
}

func translatorTypeFor(t JobType) TranslatorType {
	switch t {
	case JobTypePaid:
		return TranslatorProfessional
	case JobTypeRWS:
		return TranslatorRWS
	default:
		return TranslatorVolunteer
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
