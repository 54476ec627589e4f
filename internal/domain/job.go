package domain

import "time"

// JobStatus represents the lifecycle state of a booking.
type JobStatus string

const (
	StatusPending             JobStatus = "pending"
	StatusAssigned            JobStatus = "assigned"
	StatusStarted             JobStatus = "started"
	StatusCompleted           JobStatus = "completed"
	StatusWithdrawnBefore24   JobStatus = "withdrawn_before_24"
	StatusWithdrawnAfter24    JobStatus = "withdrawn_after_24"
	StatusNotCarriedOutByCust JobStatus = "not_carried_out_customer"
)

// Terminal reports whether no further transitions are permitted.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusWithdrawnBefore24, StatusWithdrawnAfter24, StatusNotCarriedOutByCust:
		return true
	}
	return false
}

// JobType classifies who may service the booking. It is derived once from the
// customer's consumer type at creation and never recomputed.
type JobType string

const (
	JobTypePaid   JobType = "paid"
	JobTypeRWS    JobType = "rws"
	JobTypeUnpaid JobType = "unpaid"
)

// Gender is a translator attribute and, on a job, a servicing requirement.
type Gender string

const (
	GenderNone   Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Certification is the canonical certification requirement code. The compound
// codes are derived at creation from the customer's free-text selections.
type Certification string

const (
	CertNone      Certification = ""
	CertNormal    Certification = "normal"
	CertCertified Certification = "certified"
	CertBoth      Certification = "both"
	CertNLaw      Certification = "n_law"
	CertNHealth   Certification = "n_health"
	CertLaw       Certification = "law"
	CertHealth    Certification = "health"
)

// Job is a single interpretation booking.
type Job struct {
	ID         int64
	CustomerID int64

	// Fixed at creation.
	FromLanguageID int64
	Duration       int // minutes
	JobType        JobType
	Immediate      bool
	Gender         Gender
	Certified      Certification
	RequiredLevel  string // empty means any level
	PhoneBooking   bool   // customer accepts a phone session
	PhysicalBooking bool  // customer requires physical presence

	// Mutable over the lifecycle.
	Status        JobStatus
	Due           time.Time
	EndAt         time.Time
	SessionTime   string // elapsed session as h:mm:ss, set on completion
	AdminComments string
	Reference     string
	UserEmail     string
	Address       string
	Instructions  string
	Town          string
	WithdrawAt    time.Time
	WillExpireAt  time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// A specific job is pre-targeted at one translator and excluded from the
	// general pool unless general claiming is explicitly allowed.
	SpecificTranslatorID int64
	AllowGeneralClaim    bool
}

// PhoneOnlyImpossible reports whether the booking cannot be serviced remotely:
// the customer refuses phone sessions and requires presence on site.
func (j *Job) PhoneOnlyImpossible() bool {
	return !j.PhoneBooking && j.PhysicalBooking
}

// TranslatorJobRelation binds one translator to one job. A relation with
// neither CancelAt nor CompletedAt set is the job's active assignment; at most
// one may exist per job at any instant.
type TranslatorJobRelation struct {
	ID           int64
	JobID        int64
	TranslatorID int64
	CreatedAt    time.Time
	CancelAt     *time.Time
	CompletedAt  *time.Time
	CompletedBy  int64
}

// Active reports whether the relation is the current assignment.
func (r *TranslatorJobRelation) Active() bool {
	return r.CancelAt == nil && r.CompletedAt == nil
}

// TranslatorType determines which job type a translator may service.
type TranslatorType string

const (
	TranslatorProfessional TranslatorType = "professional"
	TranslatorRWS          TranslatorType = "rwstranslator"
	TranslatorVolunteer    TranslatorType = "volunteer"
)

// JobTypeFor maps a translator type to the only job type it may service.
func JobTypeFor(t TranslatorType) JobType {
	switch t {
	case TranslatorProfessional:
		return JobTypePaid
	case TranslatorRWS:
		return JobTypeRWS
	default:
		return JobTypeUnpaid
	}
}

// TranslatorProfile is the read-only translator view the engine filters on.
type TranslatorProfile struct {
	UserID    int64
	Name      string
	Email     string
	Type      TranslatorType
	Level     string
	Gender    Gender
	Languages []int64
	Town      string

	OptOutNotifications      bool
	OptOutNightNotifications bool
}

// Speaks reports whether the translator covers the given language.
func (t *TranslatorProfile) Speaks(languageID int64) bool {
	for _, id := range t.Languages {
		if id == languageID {
			return true
		}
	}
	return false
}

// ConsumerType classifies the paying customer and drives job type derivation.
type ConsumerType string

const (
	ConsumerRWS   ConsumerType = "rwsconsumer"
	ConsumerNGO   ConsumerType = "ngo"
	ConsumerPaid  ConsumerType = "paid"
	ConsumerOther ConsumerType = "other"
)

// CustomerProfile is the read-only customer view.
type CustomerProfile struct {
	UserID       int64
	Name         string
	Email        string
	Town         string
	Address      string
	Instructions string
	ConsumerType ConsumerType
}

// Role identifies which side of a booking an acting user is on.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleTranslator Role = "translator"
)

// Actor is the authenticated user an operation runs on behalf of. It is passed
// explicitly so the engine never reads ambient identity.
type Actor struct {
	ID   int64
	Role Role
}
