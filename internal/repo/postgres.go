package repo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alijeyrad/studio_backend/pkg/database"
)

//go:embed migrations/postgres.sql
var postgresSchema string

const submissionColumns = `id, full_name, email, phone, company, service_needed, project_details,
	page_url, user_agent, ip_address, status, metadata, created_at, updated_at`

// PostgresStore is the production Store backed by a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if the database is unreachable.
func NewPostgresStore(ctx context.Context, cfg database.Config) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies the embedded schema. Safe to run multiple times.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)
	return err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) Create(ctx context.Context, s *Submission) error {
	if err := prepareCreate(s); err != nil {
		return err
	}

	meta, err := json.Marshal(s.Metadata)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, s.ID, s.FullName, s.Email, s.Phone, s.Company, s.ServiceNeeded, s.ProjectDetails,
		s.PageURL, s.UserAgent, s.IPAddress, string(s.Status), meta, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (p *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, extra map[string]string) error {
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

	tag, err := p.pool.Exec(ctx, `
		UPDATE submissions
		SET status = $2, metadata = metadata || $3::jsonb, updated_at = $4
		WHERE id = $1 AND status = $5
	`, id, string(status), meta, time.Now().UTC().Truncate(time.Microsecond), string(StatusReceived))
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := p.Get(ctx, id); err != nil {
		return err
	}
	return ErrStatusTransition
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	s, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (p *PostgresStore) List(ctx context.Context, f ListFilter) ([]*Submission, int, error) {
	f = normalizeFilter(f)

	var status *string
	if f.Status != nil {
		v := string(*f.Status)
		status = &v
	}

	var total int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submissions WHERE ($1::text IS NULL OR status = $1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, status, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]*Submission, 0, f.Limit)
	for rows.Next() {
		s, err := scanPostgres(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (p *PostgresStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT status, COUNT(*) FROM submissions GROUP BY status`)
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

func scanPostgres(row pgx.Row) (*Submission, error) {
	var (
		s      Submission
		status string
		meta   []byte
	)
	err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.Company, &s.ServiceNeeded,
		&s.ProjectDetails, &s.PageURL, &s.UserAgent, &s.IPAddress, &status, &meta,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = Status(status)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if err := json.Unmarshal(meta, &s.Metadata); err != nil {
		return nil, fmt.Errorf("decode submission metadata: %w", err)
	}
	return &s, nil
}
