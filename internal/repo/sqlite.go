package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite.sql
var sqliteSchema string

// SQLiteStore is a single-file Store for small deployments and tests.
// Timestamps are stored as unix microseconds.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchema)
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, sub *Submission) error {
	if err := prepareCreate(sub); err != nil {
		return err
	}

	meta, err := json.Marshal(sub.Metadata)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`, sub.ID.String(), sub.FullName, sub.Email, sub.Phone, sub.Company, sub.ServiceNeeded,
		sub.ProjectDetails, sub.PageURL, sub.UserAgent, sub.IPAddress, string(sub.Status), string(meta),
		sub.CreatedAt.UnixMicro(), sub.UpdatedAt.UnixMicro())
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, extra map[string]string) error {
	if err := checkTransition(status); err != nil {
		return err
	}
	if extra == nil {
		extra = map[string]string{}
	}
	meta, err := json.Marshal(extra)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET status = ?, metadata = json_patch(metadata, ?), updated_at = ?
		WHERE id = ? AND status = ?
	`, string(status), string(meta), time.Now().UTC().UnixMicro(), id.String(), string(StatusReceived))
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return ErrStatusTransition
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id.String())
	sub, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

func (s *SQLiteStore) List(ctx context.Context, f ListFilter) ([]*Submission, int, error) {
	f = normalizeFilter(f)

	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE (?1 IS NULL OR status = ?1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE (?1 IS NULL OR status = ?1)
		ORDER BY created_at DESC, id DESC
		LIMIT ?2 OFFSET ?3
	`, status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]*Submission, 0, f.Limit)
	for rows.Next() {
		sub, err := scanSQLite(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sub)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	defer rows.Close()

	out := map[Status]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[Status(status)] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Submission, error) {
	var (
		sub                  Submission
		id, status, meta     string
		createdAt, updatedAt int64
	)
	err := row.Scan(&id, &sub.FullName, &sub.Email, &sub.Phone, &sub.Company, &sub.ServiceNeeded,
		&sub.ProjectDetails, &sub.PageURL, &sub.UserAgent, &sub.IPAddress, &status, &meta,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if sub.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode submission id: %w", err)
	}
	sub.Status = Status(status)
	sub.CreatedAt = time.UnixMicro(createdAt).UTC()
	sub.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	if err := json.Unmarshal([]byte(meta), &sub.Metadata); err != nil {
		return nil, fmt.Errorf("decode submission metadata: %w", err)
	}
	return &sub, nil
}
