// Package store persists users and briefing run history in Postgres.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type Store struct {
	DB *sql.DB
}

// Run statuses persisted for briefing history.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run is one briefing run as recorded in history.
type Run struct {
	ID                 string     `json:"id"`
	ProfileFingerprint string     `json:"profile_fingerprint"`
	Path               string     `json:"path"` // cached, demo, live
	Status             string     `json:"status"`
	Error              *string    `json:"error,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}

func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// User operations
func (s *Store) CreateUser(ctx context.Context, email, hash string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO users (email, password_hash) VALUES ($1,$2)`, email, hash)
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (id string, hash string, err error) {
	err = s.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE email=$1`, email).Scan(&id, &hash)
	return
}

// Run operations
func (s *Store) CreateRun(ctx context.Context, id, fingerprint, path string) error {
	if id == "" {
		id = uuid.NewString()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, profile_fingerprint, path, status) VALUES ($1,$2,$3,$4)`,
		id, fingerprint, path, RunStatusRunning)
	return err
}

func (s *Store) FinishRun(ctx context.Context, runID, status string, errMsg *string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE runs SET status=$2, error=$3, finished_at=now() WHERE id=$1`,
		runID, status, errMsg)
	return err
}

func (s *Store) ListRuns(ctx context.Context, fingerprint string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, profile_fingerprint, path, status, error, started_at, finished_at
		 FROM runs WHERE profile_fingerprint=$1 ORDER BY started_at DESC LIMIT $2`,
		fingerprint, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ProfileFingerprint, &r.Path, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRunTime returns when the last successful run for the profile
// finished, or nil when there has never been one.
func (s *Store) LatestRunTime(ctx context.Context, fingerprint string) (*time.Time, error) {
	var t sql.NullTime
	err := s.DB.QueryRowContext(ctx,
		`SELECT max(finished_at) FROM runs WHERE profile_fingerprint=$1 AND status=$2`,
		fingerprint, RunStatusSucceeded).Scan(&t)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}
