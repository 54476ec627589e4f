package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nordtolk/booking/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id            INTEGER NOT NULL,
    from_language_id       INTEGER NOT NULL,
    duration               INTEGER NOT NULL,
    job_type               TEXT NOT NULL,
    immediate              INTEGER NOT NULL DEFAULT 0,
    gender                 TEXT NOT NULL DEFAULT '',
    certified              TEXT NOT NULL DEFAULT '',
    required_level         TEXT NOT NULL DEFAULT '',
    phone_booking          INTEGER NOT NULL DEFAULT 0,
    physical_booking       INTEGER NOT NULL DEFAULT 0,
    status                 TEXT NOT NULL DEFAULT 'pending',
    due                    DATETIME,
    end_at                 DATETIME,
    session_time           TEXT NOT NULL DEFAULT '',
    admin_comments         TEXT NOT NULL DEFAULT '',
    reference              TEXT NOT NULL DEFAULT '',
    user_email             TEXT NOT NULL DEFAULT '',
    address                TEXT NOT NULL DEFAULT '',
    instructions           TEXT NOT NULL DEFAULT '',
    town                   TEXT NOT NULL DEFAULT '',
    withdraw_at            DATETIME,
    will_expire_at         DATETIME,
    specific_translator_id INTEGER NOT NULL DEFAULT 0,
    allow_general_claim    INTEGER NOT NULL DEFAULT 0,
    created_at             DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at             DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_type_status ON jobs(job_type, status);

CREATE TABLE IF NOT EXISTS translator_job_rel (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id        INTEGER NOT NULL REFERENCES jobs(id),
    translator_id INTEGER NOT NULL,
    created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
    cancel_at     DATETIME,
    completed_at  DATETIME,
    completed_by  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rel_job ON translator_job_rel(job_id);
CREATE INDEX IF NOT EXISTS idx_rel_translator ON translator_job_rel(translator_id);

CREATE TABLE IF NOT EXISTS translators (
    user_id       INTEGER PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    type          TEXT NOT NULL,
    level         TEXT NOT NULL DEFAULT '',
    gender        TEXT NOT NULL DEFAULT '',
    town          TEXT NOT NULL DEFAULT '',
    opt_out       INTEGER NOT NULL DEFAULT 0,
    opt_out_night INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS translator_languages (
    user_id     INTEGER NOT NULL REFERENCES translators(user_id),
    language_id INTEGER NOT NULL,
    PRIMARY KEY (user_id, language_id)
);

CREATE TABLE IF NOT EXISTS customers (
    user_id       INTEGER PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    town          TEXT NOT NULL DEFAULT '',
    address       TEXT NOT NULL DEFAULT '',
    instructions  TEXT NOT NULL DEFAULT '',
    consumer_type TEXT NOT NULL DEFAULT 'paid'
);

CREATE TABLE IF NOT EXISTS languages (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id   TEXT NOT NULL,
    actor_id   INTEGER NOT NULL,
    job_id     INTEGER NOT NULL,
    field      TEXT NOT NULL,
    old_value  TEXT NOT NULL DEFAULT '',
    new_value  TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_audit_job ON audit_log(job_id);
`

// Store implements domain.JobStore, domain.UserStore, domain.AuditSink and
// domain.LanguageLookup over a single SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath and initializes the
// schema.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// SQLite allows one writer; a single pooled connection turns lock
	// contention into queueing instead of SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize schema")
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const jobColumns = `id, customer_id, from_language_id, duration, job_type, immediate,
	gender, certified, required_level, phone_booking, physical_booking, status,
	due, end_at, session_time, admin_comments, reference, user_email, address,
	instructions, town, withdraw_at, will_expire_at, specific_translator_id,
	allow_general_claim, created_at, updated_at`

func (s *Store) CreateJob(ctx context.Context, job *domain.Job) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (customer_id, from_language_id, duration, job_type, immediate,
			gender, certified, required_level, phone_booking, physical_booking, status,
			due, end_at, session_time, admin_comments, reference, user_email, address,
			instructions, town, withdraw_at, will_expire_at, specific_translator_id,
			allow_general_claim, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.CustomerID, job.FromLanguageID, job.Duration, job.JobType, job.Immediate,
		job.Gender, job.Certified, job.RequiredLevel, job.PhoneBooking, job.PhysicalBooking, job.Status,
		nullTime(job.Due), nullTime(job.EndAt), job.SessionTime, job.AdminComments, job.Reference,
		job.UserEmail, job.Address, job.Instructions, job.Town,
		nullTime(job.WithdrawAt), nullTime(job.WillExpireAt),
		job.SpecificTranslatorID, job.AllowGeneralClaim, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert job")
	}
	return result.LastInsertId()
}

func (s *Store) JobByID(ctx context.Context, id int64) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (s *Store) SaveJob(ctx context.Context, job *domain.Job) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET customer_id = ?, from_language_id = ?, duration = ?, job_type = ?,
			immediate = ?, gender = ?, certified = ?, required_level = ?, phone_booking = ?,
			physical_booking = ?, status = ?, due = ?, end_at = ?, session_time = ?,
			admin_comments = ?, reference = ?, user_email = ?, address = ?, instructions = ?,
			town = ?, withdraw_at = ?, will_expire_at = ?, specific_translator_id = ?,
			allow_general_claim = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		job.CustomerID, job.FromLanguageID, job.Duration, job.JobType,
		job.Immediate, job.Gender, job.Certified, job.RequiredLevel, job.PhoneBooking,
		job.PhysicalBooking, job.Status, nullTime(job.Due), nullTime(job.EndAt), job.SessionTime,
		job.AdminComments, job.Reference, job.UserEmail, job.Address, job.Instructions,
		job.Town, nullTime(job.WithdrawAt), nullTime(job.WillExpireAt), job.SpecificTranslatorID,
		job.AllowGeneralClaim, job.CreatedAt, job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update job")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (s *Store) PendingJobsByType(ctx context.Context, jobType domain.JobType) ([]domain.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ? AND job_type = ? ORDER BY due ASC`,
		domain.StatusPending, jobType,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query pending jobs")
	}
	return collectJobs(rows)
}

func (s *Store) ExpiredPendingJobs(ctx context.Context, now time.Time) ([]domain.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status = ? AND will_expire_at IS NOT NULL AND will_expire_at < ?
		 ORDER BY will_expire_at ASC`,
		domain.StatusPending, now,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query expired jobs")
	}
	return collectJobs(rows)
}

const relColumns = `id, job_id, translator_id, created_at, cancel_at, completed_at, completed_by`

func (s *Store) ActiveRelation(ctx context.Context, jobID int64) (*domain.TranslatorJobRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relColumns+` FROM translator_job_rel
		 WHERE job_id = ? AND cancel_at IS NULL AND completed_at IS NULL`,
		jobID,
	)
	return scanRelation(row)
}

func (s *Store) LatestCompletedRelation(ctx context.Context, jobID int64) (*domain.TranslatorJobRelation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+relColumns+` FROM translator_job_rel
		 WHERE job_id = ? AND completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT 1`,
		jobID,
	)
	return scanRelation(row)
}

func (s *Store) RelationsByTranslator(ctx context.Context, translatorID int64) ([]domain.TranslatorJobRelation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+relColumns+` FROM translator_job_rel WHERE translator_id = ?`,
		translatorID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query relations")
	}
	defer rows.Close()

	var rels []domain.TranslatorJobRelation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}
	return rels, rows.Err()
}

// InsertRelationIfPending performs the assignment compare-and-swap: the job
// moves from pending to assigned and the relation row is inserted in one
// transaction. A false return means another translator got there first.
func (s *Store) InsertRelationIfPending(ctx context.Context, jobID, translatorID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.StatusAssigned, time.Now(), jobID, domain.StatusPending,
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to claim job")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO translator_job_rel (job_id, translator_id, created_at) VALUES (?, ?, ?)`,
		jobID, translatorID, time.Now(),
	); err != nil {
		return false, errors.Wrap(err, "failed to insert relation")
	}

	if err := tx.Commit(); err != nil {
		return false, errors.Wrap(err, "failed to commit assignment")
	}
	return true, nil
}

func (s *Store) PurgeRelation(ctx context.Context, translatorID, jobID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM translator_job_rel WHERE translator_id = ? AND job_id = ?`,
		translatorID, jobID,
	)
	return errors.Wrap(err, "failed to purge relation")
}

func (s *Store) SaveRelation(ctx context.Context, rel *domain.TranslatorJobRelation) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE translator_job_rel SET job_id = ?, translator_id = ?, created_at = ?,
			cancel_at = ?, completed_at = ?, completed_by = ?
		 WHERE id = ?`,
		rel.JobID, rel.TranslatorID, rel.CreatedAt,
		nullTimePtr(rel.CancelAt), nullTimePtr(rel.CompletedAt), rel.CompletedBy,
		rel.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update relation")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRelationNotFound
	}
	return nil
}

func (s *Store) CreateRelation(ctx context.Context, rel *domain.TranslatorJobRelation) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO translator_job_rel (job_id, translator_id, created_at, cancel_at, completed_at, completed_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rel.JobID, rel.TranslatorID, rel.CreatedAt,
		nullTimePtr(rel.CancelAt), nullTimePtr(rel.CompletedAt), rel.CompletedBy,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert relation")
	}
	return result.LastInsertId()
}

func (s *Store) TranslatorByID(ctx context.Context, userID int64) (*domain.TranslatorProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, type, level, gender, town, opt_out, opt_out_night
		 FROM translators WHERE user_id = ?`,
		userID,
	)
	t, err := scanTranslator(row)
	if err != nil {
		return nil, err
	}
	t.Languages, err = s.translatorLanguages(ctx, userID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Store) TranslatorsByType(ctx context.Context, tt domain.TranslatorType) ([]domain.TranslatorProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, name, email, type, level, gender, town, opt_out, opt_out_night
		 FROM translators WHERE type = ?`,
		tt,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query translators")
	}
	defer rows.Close()

	var out []domain.TranslatorProfile
	for rows.Next() {
		t, err := scanTranslator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Languages, err = s.translatorLanguages(ctx, out[i].UserID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) translatorLanguages(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT language_id FROM translator_languages WHERE user_id = ? ORDER BY language_id`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query translator languages")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CustomerByID(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, town, address, instructions, consumer_type
		 FROM customers WHERE user_id = ?`,
		userID,
	)
	var c domain.CustomerProfile
	var consumerType string
	err := row.Scan(&c.UserID, &c.Name, &c.Email, &c.Town, &c.Address, &c.Instructions, &consumerType)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan customer")
	}
	c.ConsumerType = domain.ConsumerType(consumerType)
	return &c, nil
}

func (s *Store) NotificationPrefs(ctx context.Context, userID int64) (*domain.NotificationPrefs, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT opt_out, opt_out_night FROM translators WHERE user_id = ?`,
		userID,
	)
	var p domain.NotificationPrefs
	err := row.Scan(&p.OptOut, &p.OptOutNight)
	if err == sql.ErrNoRows {
		// Customers and unknown users have no stored preferences.
		return &domain.NotificationPrefs{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan notification prefs")
	}
	return &p, nil
}

// NameFor implements domain.LanguageLookup.
func (s *Store) NameFor(ctx context.Context, languageID int64) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name FROM languages WHERE id = ?`, languageID)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return "", errors.Newf("language %d not found", languageID)
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to scan language")
	}
	return name, nil
}

// Record implements domain.AuditSink. All changes of one call share a batch id
// so an edit can be read back as a unit.
func (s *Store) Record(ctx context.Context, actorID, jobID int64, changes []domain.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	batchID := uuid.NewString()
	now := time.Now()
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO audit_log (batch_id, actor_id, job_id, field, old_value, new_value, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			batchID, actorID, jobID, c.Field, c.Old, c.New, now,
		); err != nil {
			return errors.Wrap(err, "failed to insert audit entry")
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit audit batch")
}

// SeedTranslator inserts or replaces a translator profile with its languages.
func (s *Store) SeedTranslator(ctx context.Context, t *domain.TranslatorProfile) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO translators (user_id, name, email, type, level, gender, town, opt_out, opt_out_night)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Name, t.Email, t.Type, t.Level, t.Gender, t.Town,
		t.OptOutNotifications, t.OptOutNightNotifications,
	); err != nil {
		return errors.Wrap(err, "failed to upsert translator")
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM translator_languages WHERE user_id = ?`, t.UserID,
	); err != nil {
		return errors.Wrap(err, "failed to reset translator languages")
	}
	for _, langID := range t.Languages {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO translator_languages (user_id, language_id) VALUES (?, ?)`,
			t.UserID, langID,
		); err != nil {
			return errors.Wrap(err, "failed to insert translator language")
		}
	}
	return nil
}

// SeedCustomer inserts or replaces a customer profile.
func (s *Store) SeedCustomer(ctx context.Context, c *domain.CustomerProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO customers (user_id, name, email, town, address, instructions, consumer_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.Email, c.Town, c.Address, c.Instructions, c.ConsumerType,
	)
	return errors.Wrap(err, "failed to upsert customer")
}

// SeedLanguage inserts or replaces a language name.
func (s *Store) SeedLanguage(ctx context.Context, id int64, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO languages (id, name) VALUES (?, ?)`, id, name,
	)
	return errors.Wrap(err, "failed to upsert language")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.Job, error) {
	var (
		job          domain.Job
		jobType      string
		gender       string
		certified    string
		status       string
		due          sql.NullTime
		endAt        sql.NullTime
		withdrawAt   sql.NullTime
		willExpireAt sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.CustomerID, &job.FromLanguageID, &job.Duration, &jobType, &job.Immediate,
		&gender, &certified, &job.RequiredLevel, &job.PhoneBooking, &job.PhysicalBooking, &status,
		&due, &endAt, &job.SessionTime, &job.AdminComments, &job.Reference, &job.UserEmail,
		&job.Address, &job.Instructions, &job.Town, &withdrawAt, &willExpireAt,
		&job.SpecificTranslatorID, &job.AllowGeneralClaim, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan job")
	}
	job.JobType = domain.JobType(jobType)
	job.Gender = domain.Gender(gender)
	job.Certified = domain.Certification(certified)
	job.Status = domain.JobStatus(status)
	job.Due = due.Time
	job.EndAt = endAt.Time
	job.WithdrawAt = withdrawAt.Time
	job.WillExpireAt = willExpireAt.Time
	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]domain.Job, error) {
	defer rows.Close()
	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func scanRelation(row scanner) (*domain.TranslatorJobRelation, error) {
	var (
		rel         domain.TranslatorJobRelation
		cancelAt    sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(&rel.ID, &rel.JobID, &rel.TranslatorID, &rel.CreatedAt, &cancelAt, &completedAt, &rel.CompletedBy)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRelationNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan relation")
	}
	if cancelAt.Valid {
		t := cancelAt.Time
		rel.CancelAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		rel.CompletedAt = &t
	}
	return &rel, nil
}

func scanTranslator(row scanner) (*domain.TranslatorProfile, error) {
	var (
		t      domain.TranslatorProfile
		tt     string
		gender string
	)
	err := row.Scan(&t.UserID, &t.Name, &t.Email, &tt, &t.Level, &gender, &t.Town,
		&t.OptOutNotifications, &t.OptOutNightNotifications)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan translator")
	}
	t.Type = domain.TranslatorType(tt)
	t.Gender = domain.Gender(gender)
	return &t, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
