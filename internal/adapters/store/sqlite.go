package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/baditaflorin/go_duplicate_questions/internal/core/domain"
)

// Status is the moderation state of a question.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when no question has the requested id.
	ErrNotFound = errors.New("question not found")
	// ErrInvalidStatus is returned for unknown moderation states.
	ErrInvalidStatus = errors.New("invalid question status")
)

// Question is a stored exam question.
type Question struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    topic TEXT NOT NULL DEFAULT '',
    text TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_questions_status ON questions(status, created_at, id);
`

// SQLiteStore keeps questions in a sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps writes serialized for the pure-Go driver.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert stores q, assigning an id and creation time when missing.
// An empty status defaults to pending.
func (s *SQLiteStore) Insert(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.Status == "" {
		q.Status = StatusPending
	}
	if !q.Status.Valid() {
		return Question{}, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now()
	}
	q.CreatedAt = q.CreatedAt.UTC().Truncate(time.Microsecond)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (id, topic, text, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.Topic, q.Text, string(q.Status), q.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

// Get loads a single question.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic, text, status, created_at FROM questions WHERE id = ?`, id)

	var (
		q       Question
		status  string
		created int64
	)
	if err := row.Scan(&q.ID, &q.Topic, &q.Text, &status, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, fmt.Errorf("get question: %w", err)
	}
	q.Status = Status(status)
	q.CreatedAt = time.UnixMicro(created).UTC()
	return q, nil
}

// SetStatus moves a question to a new moderation state.
func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE questions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetApprovedQuestions returns the approved corpus, oldest first.
func (s *SQLiteStore) GetApprovedQuestions(ctx context.Context) ([]domain.CorpusItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text FROM questions WHERE status = ? ORDER BY created_at, id`, string(StatusApproved))
	if err != nil {
		return nil, fmt.Errorf("query approved questions: %w", err)
	}
	defer rows.Close()

	corpus := make([]domain.CorpusItem, 0)
	for rows.Next() {
		var item domain.CorpusItem
		if err := rows.Scan(&item.ID, &item.Text); err != nil {
			return nil, fmt.Errorf("scan approved question: %w", err)
		}
		corpus = append(corpus, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approved questions: %w", err)
	}
	return corpus, nil
}
