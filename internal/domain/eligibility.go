package domain

// LevelPolicy decides whether a translator level satisfies a job's level
// requirement. The default is strict equality when the job states one.
type LevelPolicy func(required, actual string) bool

// EqualLevel is the default LevelPolicy.
func EqualLevel(required, actual string) bool {
	return required == "" || required == actual
}

// Eligibility is the pure matching filter between translators and pending
// jobs. It holds no state beyond the level policy and performs no I/O.
type Eligibility struct {
	Level LevelPolicy
}

// NewEligibility returns a filter with the default level policy.
func NewEligibility() Eligibility {
	return Eligibility{Level: EqualLevel}
}

// Matches reports whether the translator may accept the job. customerTown is
// the booking customer's town, used for the physical-presence rule. All rules
// are conjunctive.
func (e Eligibility) Matches(t *TranslatorProfile, job *Job, customerTown string) bool {
	if job.JobType != JobTypeFor(t.Type) {
		return false
	}
	if !t.Speaks(job.FromLanguageID) {
		return false
	}
	if job.Gender != GenderNone && t.Gender != job.Gender {
		return false
	}
	level := e.Level
	if level == nil {
		level = EqualLevel
	}
	if !level(job.RequiredLevel, t.Level) {
		return false
	}
	if job.SpecificTranslatorID != 0 && job.SpecificTranslatorID != t.UserID && !job.AllowGeneralClaim {
		return false
	}
	// A booking that rules out phone sessions and requires presence can only
	// go to a translator in the customer's town.
	if job.PhoneOnlyImpossible() && t.Town != customerTown {
		return false
	}
	return true
}

// FilterJobs returns the subset of jobs the translator may accept. townOf
// resolves a job's customer town; a missing entry fails the physical rule
// closed. The result is empty, never nil on error: there is no error path.
func (e Eligibility) FilterJobs(t *TranslatorProfile, jobs []Job, townOf map[int64]string) []Job {
	matched := make([]Job, 0, len(jobs))
	for i := range jobs {
		if e.Matches(t, &jobs[i], townOf[jobs[i].CustomerID]) {
			matched = append(matched, jobs[i])
		}
	}
	return matched
}

// FilterTranslators returns the translators eligible for the job, used when
// broadcasting a new or reopened booking.
func (e Eligibility) FilterTranslators(job *Job, customerTown string, candidates []TranslatorProfile) []TranslatorProfile {
	matched := make([]TranslatorProfile, 0, len(candidates))
	for i := range candidates {
		if e.Matches(&candidates[i], job, customerTown) {
			matched = append(matched, candidates[i])
		}
	}
	return matched
}
