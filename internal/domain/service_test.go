package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_RequiresCustomerRole(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Create(context.Background(), Actor{ID: 10, Role: RoleTranslator}, CreateJobRequest{})
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, msgNotACustomer, ve.Message)
}

func TestCreate_PersistsDerivedJob(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")

	job, err := env.svc.Create(ctx, Actor{ID: 7, Role: RoleCustomer}, CreateJobRequest{
		FromLanguageID: 1,
		Duration:       60,
		Immediate:      true,
	})
	require.NoError(t, err)
	require.NotZero(t, job.ID)

	stored, err := env.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, JobTypePaid, stored.JobType, "paid consumer maps to paid jobs")
	assert.True(t, stored.Immediate)
	assert.True(t, stored.PhoneBooking, "immediate bookings are phone bookings")
	assert.Equal(t, baseTime.Add(DefaultImmediateLead), stored.Due)
	assert.Empty(t, env.notifier.sentEmails(), "creation itself notifies nobody")
}

func TestAttachEmail_FallsBackToProfileAndBroadcasts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	customer := env.seedCustomer(7, "Stockholm")
	customer.Address = "Storgatan 1"
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour), PhoneBooking: true})

	updated, err := env.svc.AttachEmail(ctx, JobEmailRequest{
		JobID:      job.ID,
		UserEmail:  "avdelning@example.com",
		AddressSet: true,
		Town:       "Solna",
	})
	require.NoError(t, err)

	assert.Equal(t, "avdelning@example.com", updated.UserEmail)
	assert.Equal(t, "Storgatan 1", updated.Address, "blank address falls back to profile")
	assert.Equal(t, "Solna", updated.Town)

	emails := env.notifier.sentEmails()
	require.Len(t, emails, 1)
	assert.Equal(t, "avdelning@example.com", emails[0].To.Email)
	assert.Equal(t, "emails.job-created", emails[0].Template)

	pushes := env.notifier.sentPushes()
	require.Len(t, pushes, 1)
	assert.Equal(t, []int64{10}, pushes[0].UserIDs)
	assert.Equal(t, "suitable_job", pushes[0].Payload.NotificationType)
}

func TestAttachEmail_NoEligibleTranslatorsSkipsPush(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour), PhoneBooking: true})

	_, err := env.svc.AttachEmail(ctx, JobEmailRequest{JobID: job.ID})
	require.NoError(t, err)

	require.Len(t, env.notifier.sentEmails(), 1)
	assert.Equal(t, "kund@example.com", env.notifier.sentEmails()[0].To.Email, "no booking email falls back to profile email")
	assert.Empty(t, env.notifier.sentPushes())
}

func TestPotentialJobs_FiltersByEligibility(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")

	ok := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour), PhoneBooking: true})
	env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour), FromLanguageID: 2, PhoneBooking: true})
	env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour), JobType: JobTypeUnpaid})

	jobs, err := env.svc.PotentialJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, ok.ID, jobs[0].ID)
}

func TestPotentialJobs_UnknownTranslator(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.PotentialJobs(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
