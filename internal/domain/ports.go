package domain

import (
	"context"
	"time"
)

// JobStore is the driven port for booking persistence.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) (int64, error)
	JobByID(ctx context.Context, id int64) (*Job, error)
	SaveJob(ctx context.Context, job *Job) error

	// PendingJobsByType lists pending jobs a given translator category could
	// service; the eligibility filter narrows the set further in memory.
	PendingJobsByType(ctx context.Context, jobType JobType) ([]Job, error)

	// ExpiredPendingJobs lists pending jobs whose will_expire_at has passed.
	ExpiredPendingJobs(ctx context.Context, now time.Time) ([]Job, error)

	// ActiveRelation returns the job's current assignment, or
	// ErrRelationNotFound when none exists.
	ActiveRelation(ctx context.Context, jobID int64) (*TranslatorJobRelation, error)

	// LatestCompletedRelation is the tie-break lookup for edit reconciliation
	// on jobs whose assignment already closed.
	LatestCompletedRelation(ctx context.Context, jobID int64) (*TranslatorJobRelation, error)

	RelationsByTranslator(ctx context.Context, translatorID int64) ([]TranslatorJobRelation, error)

	// InsertRelationIfPending atomically creates the relation and moves the
	// job from pending to assigned. It returns false when the job is no
	// longer pending; this compare-and-swap is the sole mechanism preventing
	// double assignment under concurrent accepts.
	InsertRelationIfPending(ctx context.Context, jobID, translatorID int64) (bool, error)

	// PurgeRelation removes the relation so the job can be re-broadcast.
	PurgeRelation(ctx context.Context, translatorID, jobID int64) error

	SaveRelation(ctx context.Context, rel *TranslatorJobRelation) error
	CreateRelation(ctx context.Context, rel *TranslatorJobRelation) (int64, error)
}

// UserStore is the driven port for the read-only profile views.
type UserStore interface {
	TranslatorByID(ctx context.Context, userID int64) (*TranslatorProfile, error)
	TranslatorsByType(ctx context.Context, t TranslatorType) ([]TranslatorProfile, error)
	CustomerByID(ctx context.Context, userID int64) (*CustomerProfile, error)
	NotificationPrefs(ctx context.Context, userID int64) (*NotificationPrefs, error)
}

// NotificationPrefs are the per-user delivery preferences the gate reads.
type NotificationPrefs struct {
	OptOut      bool // no push notifications at all
	OptOutNight bool // defer pushes during quiet hours
}

// Notifier delivers rendered notifications. Delivery failures are reported to
// the caller for logging only; they never roll back a committed transition.
type Notifier interface {
	SendEmail(ctx context.Context, to EmailRecipient, subject, template string, data map[string]any) error
	SendPush(ctx context.Context, userIDs []int64, jobID int64, payload PushPayload, delayed bool) error
}

// EmailRecipient addresses one outbound email.
type EmailRecipient struct {
	Email string
	Name  string
}

// NotificationGate decides per recipient whether a notification is suppressed
// outright or deferred past quiet hours.
type NotificationGate interface {
	ShouldSuppress(ctx context.Context, userID int64) (bool, error)
	ShouldDelay(ctx context.Context, userID int64, now time.Time) (bool, error)
}

// LanguageLookup resolves a language id to its display name.
type LanguageLookup interface {
	NameFor(ctx context.Context, languageID int64) (string, error)
}

// FieldChange is one old/new pair in an audit batch.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// AuditSink is the append-only change log.
type AuditSink interface {
	Record(ctx context.Context, actorID, jobID int64, changes []FieldChange) error
}

// Clock supplies the current time. Operations take it via the service so
// transition decisions never read ambient time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock returns a Clock pinned to t, for tests.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
