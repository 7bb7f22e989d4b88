package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talentscout/hiring-assistant/internal/candidate"
	"go.uber.org/zap"
)

const candidatesSchema = `
CREATE TABLE IF NOT EXISTS candidates (
	id               BIGSERIAL PRIMARY KEY,
	session_id       TEXT NOT NULL,
	full_name        TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL DEFAULT '',
	experience_years TEXT NOT NULL DEFAULT '',
	desired_position TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	tech_stack       TEXT NOT NULL DEFAULT '',
	questions        JSONB NOT NULL DEFAULT '[]',
	answers          JSONB NOT NULL DEFAULT '[]',
	created_at       TIMESTAMPTZ NOT NULL
)`

// PgStore persists candidates in Postgres, one row per submission.
type PgStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgStore connects to the database and ensures the candidates table
// exists. The caller owns the returned store and must Close it.
func NewPgStore(ctx context.Context, dsn string, log *zap.Logger) (*PgStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, candidatesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring candidates table: %w", err)
	}

	return &PgStore{
		pool:   pool,
		logger: log.With(zap.String("store", "postgres")),
	}, nil
}

func (s *PgStore) Close() {
	s.pool.Close()
}

func (s *PgStore) Save(ctx context.Context, p *candidate.Profile) error {
	sanitizeProfile(p)

	if problems := candidate.ValidateForSave(p); len(problems) > 0 {
		return fmt.Errorf("profile failed validation: %s", formatProblems(problems))
	}

	questions, err := json.Marshal(p.TechnicalQuestions)
	if err != nil {
		return fmt.Errorf("encoding questions: %w", err)
	}
	answers, err := json.Marshal(p.TechnicalAnswers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO candidates (
			session_id, full_name, email, phone, experience_years,
			desired_position, location, tech_stack, questions, answers, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.SessionID, p.FullName, p.Email, p.Phone, p.ExperienceYears,
		p.DesiredPosition, p.Location, p.TechStack, questions, answers, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting candidate: %w", err)
	}

	s.logger.Info("candidate saved", zap.String("session_id", p.SessionID))

	return nil
}

func (s *PgStore) LoadAll(ctx context.Context) ([]candidate.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, full_name, email, phone, experience_years,
		       desired_position, location, tech_stack, questions, answers, created_at
		FROM candidates
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	records := []candidate.Record{}
	for rows.Next() {
		var (
			r         candidate.Record
			questions []byte
			answers   []byte
			createdAt time.Time
		)

		if err := rows.Scan(
			&r.SessionID, &r.FullName, &r.Email, &r.Phone, &r.ExperienceYears,
			&r.DesiredPosition, &r.Location, &r.TechStack, &questions, &answers, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning candidate row: %w", err)
		}

		if err := json.Unmarshal(questions, &r.TechnicalQuestions); err != nil {
			return nil, fmt.Errorf("decoding questions: %w", err)
		}
		if err := json.Unmarshal(answers, &r.TechnicalAnswers); err != nil {
			return nil, fmt.Errorf("decoding answers: %w", err)
		}
		r.CreatedAt = createdAt.UTC().Format(time.RFC3339)

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading candidate rows: %w", err)
	}

	return records, nil
}
