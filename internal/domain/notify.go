package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PushPayload is the data block attached to every mobile push about a job.
type PushPayload struct {
	NotificationType string   `json:"notification_type"`
	JobID            int64    `json:"job_id"`
	FromLanguageID   int64    `json:"from_language_id"`
	Immediate        bool     `json:"immediate"`
	Duration         int      `json:"duration"`
	Status           string   `json:"status"`
	Due              string   `json:"due"`
	JobType          string   `json:"job_type"`
	PhoneBooking     bool     `json:"customer_phone_type"`
	PhysicalBooking  bool     `json:"customer_physical_type"`
	CustomerTown     string   `json:"customer_town"`
	JobFor           []string `json:"job_for"`
	Message          string   `json:"message"`
}

// NewPushPayload builds the payload for a job, including the localized
// audience labels derived from gender and certification.
func NewPushPayload(job *Job, notificationType, message string) PushPayload {
	return PushPayload{
		NotificationType: notificationType,
		JobID:            job.ID,
		FromLanguageID:   job.FromLanguageID,
		Immediate:        job.Immediate,
		Duration:         job.Duration,
		Status:           string(job.Status),
		Due:              job.Due.Format("2006-01-02 15:04:05"),
		JobType:          string(job.JobType),
		PhoneBooking:     job.PhoneBooking,
		PhysicalBooking:  job.PhysicalBooking,
		CustomerTown:     job.Town,
		JobFor:           JobForLabels(job),
		Message:          message,
	}
}

// JobForLabels renders the audience the booking asked for, in the customer's
// language, for display in lists and push messages.
func JobForLabels(job *Job) []string {
	var labels []string
	switch job.Gender {
	case GenderMale:
		labels = append(labels, "Man")
	case GenderFemale:
		labels = append(labels, "Kvinna")
	}
	switch job.Certified {
	case CertBoth:
		labels = append(labels, "Godkänd tolk", "Auktoriserad")
	case CertCertified:
		labels = append(labels, "Auktoriserad")
	case CertNHealth, CertHealth:
		labels = append(labels, "Sjukvårdstolk")
	case CertLaw, CertNLaw:
		labels = append(labels, "Rätttstolk")
	case CertNone:
	default:
		labels = append(labels, string(job.Certified))
	}
	return labels
}

// EmailIntent is one planned email. Intents are computed by the pure
// transition code and executed afterwards by the Dispatcher.
type EmailIntent struct {
	To       EmailRecipient
	Subject  string
	Template string
	Data     map[string]any
}

// PushIntent is one planned push to a set of users. Recipients are gated
// individually at dispatch time.
type PushIntent struct {
	ID      string
	UserIDs []int64
	JobID   int64
	Payload PushPayload
}

// NewPushIntent assigns the intent a correlation id for delivery logs.
func NewPushIntent(userIDs []int64, jobID int64, payload PushPayload) PushIntent {
	return PushIntent{ID: uuid.NewString(), UserIDs: userIDs, JobID: jobID, Payload: payload}
}

// Intents is the side-effect plan a lifecycle transition produced.
type Intents struct {
	Emails []EmailIntent
	Pushes []PushIntent
}

func (in *Intents) addEmail(e EmailIntent)  { in.Emails = append(in.Emails, e) }
func (in *Intents) addPush(p PushIntent)    { in.Pushes = append(in.Pushes, p) }
func (in *Intents) Empty() bool             { return len(in.Emails) == 0 && len(in.Pushes) == 0 }

// Dispatcher executes notification intents against the external collaborators.
// Delivery failures are logged and dropped: the state transition that produced
// the intents has already been committed.
type Dispatcher struct {
	notifier Notifier
	gate     NotificationGate
	clock    Clock
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(notifier Notifier, gate NotificationGate, clock Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, gate: gate, clock: clock, logger: logger}
}

// Dispatch sends all intents. Emails go out as planned; push recipients are
// split into immediate and quiet-hours sets, with opted-out users dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, intents Intents) {
	g, ctx := errgroup.WithContext(ctx)

	for _, e := range intents.Emails {
		e := e
		g.Go(func() error {
			if err := d.notifier.SendEmail(ctx, e.To, e.Subject, e.Template, e.Data); err != nil {
				d.logger.Error("email delivery failed",
					zap.String("template", e.Template),
					zap.String("recipient", e.To.Email),
					zap.Error(err))
			}
			return nil
		})
	}

	for _, p := range intents.Pushes {
		p := p
		g.Go(func() error {
			d.sendPush(ctx, p)
			return nil
		})
	}

	g.Wait()
}

func (d *Dispatcher) sendPush(ctx context.Context, p PushIntent) {
	now := d.clock.Now()
	var immediate, delayed []int64
	for _, userID := range p.UserIDs {
		suppress, err := d.gate.ShouldSuppress(ctx, userID)
		if err != nil {
			d.logger.Warn("notification gate lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if suppress {
			continue
		}
		delay, err := d.gate.ShouldDelay(ctx, userID, now)
		if err != nil {
			d.logger.Warn("notification gate lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			continue
		}
		if delay {
			delayed = append(delayed, userID)
		} else {
			immediate = append(immediate, userID)
		}
	}

	if len(immediate) > 0 {
		if err := d.notifier.SendPush(ctx, immediate, p.JobID, p.Payload, false); err != nil {
			d.logger.Error("push delivery failed",
				zap.String("intent_id", p.ID),
				zap.Int64("job_id", p.JobID),
				zap.Int("recipients", len(immediate)),
				zap.Error(err))
		}
	}
	if len(delayed) > 0 {
		if err := d.notifier.SendPush(ctx, delayed, p.JobID, p.Payload, true); err != nil {
			d.logger.Error("delayed push delivery failed",
				zap.String("intent_id", p.ID),
				zap.Int64("job_id", p.JobID),
				zap.Int("recipients", len(delayed)),
				zap.Error(err))
		}
	}
}

// Push message texts. Like the emails, these are user-facing contract.

func msgAcceptedPush(language string, job *Job) string {
	return fmt.Sprintf("Din bokning för %s translators, %dmin, %s har accepterats av en tolk. Vänligen öppna appen för att se detaljer om tolken.",
		language, job.Duration, job.Due.Format("2006-01-02 15:04:05"))
}

func msgCustomerCancelledPush(language string, job *Job) string {
	return fmt.Sprintf("Kunden har avbokat bokningen för %stolk, %dmin, %s. Var god och kolla dina tidigare bokningar för detaljer.",
		language, job.Duration, job.Due.Format("2006-01-02 15:04:05"))
}

func msgTranslatorCancelledPush(language string, job *Job) string {
	return fmt.Sprintf("Er %stolk, %dmin %s, har avbokat tolkningen. Vi letar nu efter en ny tolk som kan ersätta denne. Tack.",
		language, job.Duration, job.Due.Format("2006-01-02 15:04:05"))
}

func msgNewJobPush(language string, job *Job) string {
	if job.Immediate {
		return fmt.Sprintf("Ny akutbokning för %stolk %dmin", language, job.Duration)
	}
	return fmt.Sprintf("Ny bokning för %stolk %dmin %s", language, job.Duration, job.Due.Format("2006-01-02 15:04:05"))
}
