package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_SilentWhenDueInPast(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")
	env.seedTranslator(11, TranslatorProfessional, 1, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Status: StatusAssigned, Due: baseTime.Add(48 * time.Hour)})
	env.seedRelation(job.ID, 10)

	// Everything changes at once, but the new due is in the past.
	res, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{
		Due:            baseTime.Add(-time.Hour),
		TranslatorID:   11,
		FromLanguageID: 2,
	}, Actor{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	assert.True(t, res.Silent)
	assert.True(t, res.DateChanged)
	assert.True(t, res.TranslatorChanged)
	assert.True(t, res.LanguageChanged)
	assert.Empty(t, env.notifier.sentEmails(), "silent update sends nothing")
	assert.Empty(t, env.notifier.sentPushes())

	// The save itself still happened.
	reloaded, err := env.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.FromLanguageID)
}

func TestUpdate_AuditBatchPerCall(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")
	env.seedTranslator(11, TranslatorProfessional, 2, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Status: StatusAssigned, Due: baseTime.Add(48 * time.Hour)})
	env.seedRelation(job.ID, 10)

	newDue := baseTime.Add(72 * time.Hour)
	_, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{
		Due:            newDue,
		TranslatorID:   11,
		FromLanguageID: 2,
		Status:         StatusStarted,
	}, Actor{ID: 42, Role: RoleCustomer})
	require.NoError(t, err)

	require.Len(t, env.audit.batches, 1, "one batch per update call")
	batch := env.audit.batches[0]
	assert.Equal(t, int64(42), batch.ActorID)
	assert.Equal(t, job.ID, batch.JobID)

	fields := map[string]FieldChange{}
	for _, c := range batch.Changes {
		fields[c.Field] = c
	}
	require.Len(t, fields, 4)
	assert.Equal(t, "10", fields["translator"].Old)
	assert.Equal(t, "11", fields["translator"].New)
	assert.Equal(t, "engelska", fields["from_language"].Old)
	assert.Equal(t, "franska", fields["from_language"].New)
	assert.Equal(t, string(StatusAssigned), fields["status"].Old)
	assert.Equal(t, string(StatusStarted), fields["status"].New)
}

func TestUpdate_ReassignmentSwapsRelation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")
	env.seedTranslator(11, TranslatorProfessional, 1, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Status: StatusAssigned, Due: baseTime.Add(48 * time.Hour)})
	env.seedRelation(job.ID, 10)

	_, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{TranslatorID: 11}, Actor{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.activeRelationCount(job.ID), "old relation cancelled, one new active")
	rel, err := env.store.ActiveRelation(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), rel.TranslatorID)
}

func TestUpdate_NotificationsGatedPerChangeClass(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour)})

	res, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{
		Due: baseTime.Add(72 * time.Hour),
	}, Actor{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	assert.True(t, res.DateChanged)
	assert.False(t, res.TranslatorChanged)
	assert.False(t, res.LanguageChanged)

	emails := env.notifier.sentEmails()
	require.Len(t, emails, 1, "only the changed-date email goes out")
	assert.Equal(t, "emails.job-changed-date", emails[0].Template)
	assert.Equal(t, baseTime.Add(48*time.Hour).Format("2006-01-02 15:04:05"), emails[0].Data["old_time"])
}

func TestUpdate_NoChangesStillSaves(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour)})

	res, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{
		AdminComments: "ring innan",
		Reference:     "ref-77",
	}, Actor{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)

	assert.False(t, res.Silent)
	assert.Empty(t, env.audit.batches, "no change classes, no audit batch")
	assert.Empty(t, env.notifier.sentEmails())

	reloaded, err := env.store.JobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "ring innan", reloaded.AdminComments)
	assert.Equal(t, "ref-77", reloaded.Reference)
}

func TestUpdate_UnknownStatusRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Due: baseTime.Add(48 * time.Hour)})

	_, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{Status: "bogus"}, Actor{ID: 1, Role: RoleCustomer})
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "status", ve.Field)
}

func TestUpdate_CompletedRelationIsReferencePoint(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedCustomer(7, "Stockholm")
	env.seedTranslator(10, TranslatorProfessional, 1, "Stockholm")
	job := env.seedJob(&Job{CustomerID: 7, Status: StatusCompleted, Due: baseTime.Add(48 * time.Hour)})
	rel := env.seedRelation(job.ID, 10)
	done := baseTime.Add(-time.Hour)
	rel.CompletedAt = &done
	rel.CompletedBy = 10
	require.NoError(t, env.store.SaveRelation(ctx, rel))

	// Same translator as the completed relation: no reassignment detected.
	res, err := env.svc.Update(ctx, job.ID, UpdateJobRequest{TranslatorID: 10}, Actor{ID: 1, Role: RoleCustomer})
	require.NoError(t, err)
	assert.False(t, res.TranslatorChanged)
}
