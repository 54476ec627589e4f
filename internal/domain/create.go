package domain

import (
	"time"
)

// Messages surfaced to end users. They are contract: the UI renders them
// verbatim, so changes here are user-visible.
const (
	msgMissingField   = "Du måste fylla in alla fält"
	msgBookingInPast  = "Can't create booking in past"
	msgNotACustomer   = "Translator can not create booking"
	msgAlreadyBooked  = "Du har redan en bokning den tiden! Bokningen är inte accepterad."
	msgCancelBy24Rule = "Du kan inte avboka en bokning som sker inom 24 timmar genom DigitalTolk. Vänligen ring på +46 73 75 86 865 och gör din avbokning over telefon. Tack!"
)

// CreateJobRequest carries the raw booking form. JobFor holds the customer's
// free-text selections (male, female, normal, certified, certified_in_law,
// certified_in_health) and is mapped to canonical codes during derivation.
type CreateJobRequest struct {
	FromLanguageID int64
	Duration       int
	Immediate      bool
	DueDate        string // "m/d/Y", required unless immediate
	DueTime        string // "H:i", required unless immediate
	PhoneBooking   bool
	PhoneBookingSet bool // whether the phone-type flag was supplied at all
	PhysicalBooking bool
	JobFor         []string
	RequiredLevel  string
	Town           string
	Reference      string
	ByAdmin        bool

	SpecificTranslatorID int64
	AllowGeneralClaim    bool
}

const dueLayout = "1/2/2006 15:04"

// BuildJob validates the request and derives the immutable creation fields:
// due synthesis for immediate bookings, gender and certification codes from
// the job_for selections, job type from the customer's consumer type, and the
// expiry deadline. It is pure; persistence happens in the service.
func BuildJob(req CreateJobRequest, customer *CustomerProfile, now time.Time, immediateLead time.Duration) (*Job, error) {
	if req.FromLanguageID == 0 {
		return nil, &ValidationError{Field: "from_language_id", Message: msgMissingField}
	}
	if req.Duration == 0 {
		return nil, &ValidationError{Field: "duration", Message: msgMissingField}
	}

	job := &Job{
		CustomerID:      customer.UserID,
		FromLanguageID:  req.FromLanguageID,
		Duration:        req.Duration,
		Immediate:       req.Immediate,
		PhysicalBooking: req.PhysicalBooking,
		RequiredLevel:   req.RequiredLevel,
		Town:            req.Town,
		Reference:       req.Reference,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,

		SpecificTranslatorID: req.SpecificTranslatorID,
		AllowGeneralClaim:    req.AllowGeneralClaim,
	}
	if job.Town == "" {
		job.Town = customer.Town
	}

	if req.Immediate {
		// Immediate bookings synthesize the due time and are always phone.
		job.Due = now.Add(immediateLead)
		job.PhoneBooking = true
	} else {
		if req.DueDate == "" {
			return nil, &ValidationError{Field: "due_date", Message: msgMissingField}
		}
		if req.DueTime == "" {
			return nil, &ValidationError{Field: "due_time", Message: msgMissingField}
		}
		if !req.PhoneBookingSet {
			return nil, &ValidationError{Field: "customer_phone_type", Message: msgMissingField}
		}
		job.PhoneBooking = req.PhoneBooking
		due, err := time.ParseInLocation(dueLayout, req.DueDate+" "+req.DueTime, now.Location())
		if err != nil {
			return nil, &ValidationError{Field: "due_date", Message: msgMissingField}
		}
		if !due.After(now) {
			return nil, &ValidationError{Field: "due_date", Message: msgBookingInPast}
		}
		job.Due = due
	}

	job.Gender, job.Certified = mapJobFor(req.JobFor)
	job.JobType = jobTypeForConsumer(customer.ConsumerType)
	job.WillExpireAt = WillExpireAt(job.Due, now)

	return job, nil
}

// mapJobFor folds the free-text selections into the canonical gender and
// certification codes, including the compound codes.
func mapJobFor(selections []string) (Gender, Certification) {
	var (
		gender Gender
		cert   Certification
	)
	has := make(map[string]bool, len(selections))
	for _, s := range selections {
		has[s] = true
	}

	switch {
	case has["male"]:
		gender = GenderMale
	case has["female"]:
		gender = GenderFemale
	}

	switch {
	case has["normal"] && has["certified"]:
		cert = CertBoth
	case has["normal"] && has["certified_in_law"]:
		cert = CertNLaw
	case has["normal"] && has["certified_in_health"]:
		cert = CertNHealth
	case has["certified"]:
		cert = CertCertified
	case has["certified_in_law"]:
		cert = CertLaw
	case has["certified_in_health"]:
		cert = CertHealth
	case has["normal"]:
		cert = CertNormal
	}
	return gender, cert
}

func jobTypeForConsumer(t ConsumerType) JobType {
	switch t {
	case ConsumerRWS:
		return JobTypeRWS
	case ConsumerNGO:
		return JobTypeUnpaid
	case ConsumerPaid:
		return JobTypePaid
	default:
		return JobTypeUnpaid
	}
}

// WillExpireAt computes how long an unanswered booking stays open: short
// notice bookings expire 90 minutes after creation, medium horizon after 16
// hours, and long horizon bookings 48 hours before they are due.
func WillExpireAt(due, createdAt time.Time) time.Time {
	diff := due.Sub(createdAt)
	switch {
	case diff <= 24*time.Hour:
		return createdAt.Add(90 * time.Minute)
	case diff <= 72*time.Hour:
		return createdAt.Add(16 * time.Hour)
	default:
		return due.Add(-48 * time.Hour)
	}
}
