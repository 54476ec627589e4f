package domain

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// memStore implements JobStore and UserStore in memory for tests. The mutex
// matters: the accept race test hits InsertRelationIfPending concurrently.
type memStore struct {
	mu          sync.Mutex
	jobs        map[int64]*Job
	rels        map[int64]*TranslatorJobRelation
	nextJobID   int64
	nextRelID   int64
	translators map[int64]*TranslatorProfile
	customers   map[int64]*CustomerProfile
	prefs       map[int64]*NotificationPrefs
}

func newMemStore() *memStore {
	return &memStore{
		jobs:        make(map[int64]*Job),
		rels:        make(map[int64]*TranslatorJobRelation),
		nextJobID:   1,
		nextRelID:   1,
		translators: make(map[int64]*TranslatorProfile),
		customers:   make(map[int64]*CustomerProfile),
		prefs:       make(map[int64]*NotificationPrefs),
	}
}

func (m *memStore) CreateJob(ctx context.Context, job *Job) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextJobID
	m.nextJobID++
	stored := *job
	stored.ID = id
	m.jobs[id] = &stored
	return id, nil
}

func (m *memStore) JobByID(ctx context.Context, id int64) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memStore) SaveJob(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memStore) PendingJobsByType(ctx context.Context, jobType JobType) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Job
	for _, job := range m.jobs {
		if job.Status == StatusPending && job.JobType == jobType {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memStore) ExpiredPendingJobs(ctx context.Context, now time.Time) ([]Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Job
	for _, job := range m.jobs {
		if job.Status == StatusPending && !job.WillExpireAt.IsZero() && job.WillExpireAt.Before(now) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memStore) ActiveRelation(ctx context.Context, jobID int64) (*TranslatorJobRelation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rel := range m.rels {
		if rel.JobID == jobID && rel.Active() {
			cp := *rel
			return &cp, nil
		}
	}
	return nil, ErrRelationNotFound
}

func (m *memStore) LatestCompletedRelation(ctx context.Context, jobID int64) (*TranslatorJobRelation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *TranslatorJobRelation
	for _, rel := range m.rels {
		if rel.JobID != jobID || rel.CompletedAt == nil {
			continue
		}
		if latest == nil || rel.CompletedAt.After(*latest.CompletedAt) {
			latest = rel
		}
	}
	if latest == nil {
		return nil, ErrRelationNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memStore) RelationsByTranslator(ctx context.Context, translatorID int64) ([]TranslatorJobRelation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TranslatorJobRelation
	for _, rel := range m.rels {
		if rel.TranslatorID == translatorID {
			out = append(out, *rel)
		}
	}
	return out, nil
}

func (m *memStore) InsertRelationIfPending(ctx context.Context, jobID, translatorID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return false, ErrJobNotFound
	}
	if job.Status != StatusPending {
		return false, nil
	}
	job.Status = StatusAssigned
	id := m.nextRelID
	m.nextRelID++
	m.rels[id] = &TranslatorJobRelation{ID: id, JobID: jobID, TranslatorID: translatorID, CreatedAt: time.Now()}
	return true, nil
}

func (m *memStore) PurgeRelation(ctx context.Context, translatorID, jobID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rel := range m.rels {
		if rel.JobID == jobID && rel.TranslatorID == translatorID {
			delete(m.rels, id)
		}
	}
	return nil
}

func (m *memStore) SaveRelation(ctx context.Context, rel *TranslatorJobRelation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rels[rel.ID]; !ok {
		return ErrRelationNotFound
	}
	cp := *rel
	m.rels[rel.ID] = &cp
	return nil
}

func (m *memStore) CreateRelation(ctx context.Context, rel *TranslatorJobRelation) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextRelID
	m.nextRelID++
	cp := *rel
	cp.ID = id
	m.rels[id] = &cp
	return id, nil
}

func (m *memStore) TranslatorByID(ctx context.Context, userID int64) (*TranslatorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.translators[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) TranslatorsByType(ctx context.Context, tt TranslatorType) ([]TranslatorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TranslatorProfile
	for _, t := range m.translators {
		if t.Type == tt {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memStore) CustomerByID(ctx context.Context, userID int64) (*CustomerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) NotificationPrefs(ctx context.Context, userID int64) (*NotificationPrefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return &NotificationPrefs{}, nil
}

// activeRelationCount checks the at-most-one-active invariant directly.
func (m *memStore) activeRelationCount(jobID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rel := range m.rels {
		if rel.JobID == jobID && rel.Active() {
			n++
		}
	}
	return n
}

// memNotifier records deliveries instead of sending them.
type memNotifier struct {
	mu     sync.Mutex
	emails []sentEmail
	pushes []sentPush
}

type sentEmail struct {
	To       EmailRecipient
	Subject  string
	Template string
	Data     map[string]any
}

type sentPush struct {
	UserIDs []int64
	JobID   int64
	Payload PushPayload
	Delayed bool
}

func (n *memNotifier) SendEmail(ctx context.Context, to EmailRecipient, subject, template string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, sentEmail{To: to, Subject: subject, Template: template, Data: data})
	return nil
}

func (n *memNotifier) SendPush(ctx context.Context, userIDs []int64, jobID int64, payload PushPayload, delayed bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, sentPush{UserIDs: userIDs, JobID: jobID, Payload: payload, Delayed: delayed})
	return nil
}

func (n *memNotifier) sentEmails() []sentEmail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEmail(nil), n.emails...)
}

func (n *memNotifier) sentPushes() []sentPush {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentPush(nil), n.pushes...)
}

// memLang is a map-backed LanguageLookup.
type memLang map[int64]string

func (l memLang) NameFor(ctx context.Context, languageID int64) (string, error) {
	if name, ok := l[languageID]; ok {
		return name, nil
	}
	return "", ErrUserNotFound
}

// memAudit records audit batches.
type memAudit struct {
	mu      sync.Mutex
	batches []auditBatch
}

type auditBatch struct {
	ActorID int64
	JobID   int64
	Changes []FieldChange
}

func (a *memAudit) Record(ctx context.Context, actorID, jobID int64, changes []FieldChange) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batches = append(a.batches, auditBatch{ActorID: actorID, JobID: jobID, Changes: changes})
	return nil
}

// testClock is a settable Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// baseTime is a daytime instant so quiet hours never interfere unless a test
// moves the clock into the night window.
var baseTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
	store    *memStore
	notifier *memNotifier
	audit    *memAudit
	clock    *testClock
	langs    memLang
}

func newTestEnv() *testEnv {
	store := newMemStore()
	notifier := &memNotifier{}
	audit := &memAudit{}
	clock := &testClock{now: baseTime}
	langs := memLang{1: "engelska", 2: "franska"}
	gate := NewPreferenceGate(store, DefaultQuietHours)
	dispatcher := NewDispatcher(notifier, gate, clock, zap.NewNop())
	svc := NewService(store, store, langs, audit, dispatcher, clock, zap.NewNop())
	return &testEnv{svc: svc, store: store, notifier: notifier, audit: audit, clock: clock, langs: langs}
}

func (e *testEnv) seedCustomer(id int64, town string) *CustomerProfile {
	c := &CustomerProfile{
		UserID:       id,
		Name:         "Testkund",
		Email:        "kund@example.com",
		Town:         town,
		ConsumerType: ConsumerPaid,
	}
	e.store.customers[id] = c
	return c
}

func (e *testEnv) seedTranslator(id int64, tt TranslatorType, langID int64, town string) *TranslatorProfile {
	t := &TranslatorProfile{
		UserID:    id,
		Name:      "Testtolk",
		Email:     "tolk@example.com",
		Type:      tt,
		Gender:    GenderFemale,
		Languages: []int64{langID},
		Town:      town,
	}
	e.store.translators[id] = t
	return t
}

func (e *testEnv) seedJob(job *Job) *Job {
	if job.Status == "" {
		job.Status = StatusPending
	}
	if job.JobType == "" {
		job.JobType = JobTypePaid
	}
	if job.FromLanguageID == 0 {
		job.FromLanguageID = 1
	}
	if job.Duration == 0 {
		job.Duration = 30
	}
	id, _ := e.store.CreateJob(context.Background(), job)
	job.ID = id
	return job
}

func (e *testEnv) seedRelation(jobID, translatorID int64) *TranslatorJobRelation {
	rel := &TranslatorJobRelation{JobID: jobID, TranslatorID: translatorID, CreatedAt: baseTime}
	id, _ := e.store.CreateRelation(context.Background(), rel)
	rel.ID = id
	return rel
}
