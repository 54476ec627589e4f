package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJobForLabels(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want []string
	}{
		{"male", Job{Gender: GenderMale}, []string{"Man"}},
		{"female", Job{Gender: GenderFemale}, []string{"Kvinna"}},
		{"both certs", Job{Certified: CertBoth}, []string{"Godkänd tolk", "Auktoriserad"}},
		{"certified", Job{Certified: CertCertified}, []string{"Auktoriserad"}},
		{"health", Job{Certified: CertNHealth}, []string{"Sjukvårdstolk"}},
		{"law", Job{Certified: CertLaw}, []string{"Rätttstolk"}},
		{"female n_law", Job{Gender: GenderFemale, Certified: CertNLaw}, []string{"Kvinna", "Rätttstolk"}},
		{"none", Job{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JobForLabels(&tt.job))
		})
	}
}

func TestDispatcher_SuppressedRecipientDropped(t *testing.T) {
	env := newTestEnv()
	env.store.prefs[10] = &NotificationPrefs{OptOut: true}

	intents := Intents{}
	intents.addPush(NewPushIntent([]int64{10, 11}, 1, PushPayload{NotificationType: "suitable_job"}))
	env.svc.dispatcher.Dispatch(context.Background(), intents)

	pushes := env.notifier.sentPushes()
	require.Len(t, pushes, 1)
	assert.Equal(t, []int64{11}, pushes[0].UserIDs)
	assert.False(t, pushes[0].Delayed)
}

func TestDispatcher_QuietHoursSplitRecipients(t *testing.T) {
	env := newTestEnv()
	env.clock.Set(time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)) // inside quiet hours
	env.store.prefs[10] = &NotificationPrefs{OptOutNight: true}

	intents := Intents{}
	intents.addPush(NewPushIntent([]int64{10, 11}, 1, PushPayload{NotificationType: "suitable_job"}))
	env.svc.dispatcher.Dispatch(context.Background(), intents)

	pushes := env.notifier.sentPushes()
	require.Len(t, pushes, 2)
	byDelayed := map[bool][]int64{}
	for _, p := range pushes {
		byDelayed[p.Delayed] = p.UserIDs
	}
	assert.Equal(t, []int64{11}, byDelayed[false])
	assert.Equal(t, []int64{10}, byDelayed[true])
}

func TestDispatcher_DeliveryFailureIsSwallowed(t *testing.T) {
	store := newMemStore()
	clock := &testClock{now: baseTime}
	gate := NewPreferenceGate(store, DefaultQuietHours)
	d := NewDispatcher(failingNotifier{}, gate, clock, zap.NewNop())

	intents := Intents{}
	intents.addEmail(EmailIntent{To: EmailRecipient{Email: "kund@example.com"}, Template: "emails.job-created"})
	intents.addPush(NewPushIntent([]int64{10}, 1, PushPayload{}))

	// Must not panic or propagate.
	d.Dispatch(context.Background(), intents)
}

type failingNotifier struct{}

func (failingNotifier) SendEmail(ctx context.Context, to EmailRecipient, subject, template string, data map[string]any) error {
	return assert.AnError
}

func (failingNotifier) SendPush(ctx context.Context, userIDs []int64, jobID int64, payload PushPayload, delayed bool) error {
	return assert.AnError
}

func TestNewPushPayload(t *testing.T) {
	due := time.Date(2024, 5, 12, 14, 0, 0, 0, time.UTC)
	job := &Job{
		ID:             3,
		FromLanguageID: 1,
		Duration:       45,
		Status:         StatusPending,
		Due:            due,
		JobType:        JobTypePaid,
		Gender:         GenderFemale,
		Town:           "Stockholm",
		PhoneBooking:   true,
	}
	p := NewPushPayload(job, "suitable_job", "Ny bokning")
	assert.Equal(t, int64(3), p.JobID)
	assert.Equal(t, "2024-05-12 14:00:00", p.Due)
	assert.Equal(t, []string{"Kvinna"}, p.JobFor)
	assert.Equal(t, "Ny bokning", p.Message)
}
