package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS qualis_assessments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		participant_id TEXT NOT NULL,
		questionnaire TEXT NOT NULL,
		questionnaire_version TEXT NOT NULL DEFAULT '',
		timepoint TEXT NOT NULL DEFAULT '',
		answers JSONB NOT NULL,
		scores JSONB NOT NULL,
		total INTEGER NOT NULL,
		prorated TEXT[] NOT NULL DEFAULT '{}',
		source TEXT NOT NULL DEFAULT '',
		submitted_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_qualis_assessments_participant
		ON qualis_assessments (participant_id, created_at)`,
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const assessmentColumns = `id, participant_id, questionnaire, questionnaire_version, timepoint,
	answers, scores, total, prorated,
	source, submitted_by, created_at`

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *Assessment) error {
	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	scoresJSON, err := json.Marshal(a.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	prorated := a.Prorated
	if prorated == nil {
		prorated = []string{}
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO qualis_assessments (participant_id, questionnaire, questionnaire_version, timepoint,
			answers, scores, total, prorated, source, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		a.ParticipantID, a.Questionnaire, a.QuestionnaireVersion, a.Timepoint,
		answersJSON, scoresJSON, a.Total, prorated, a.Source, a.SubmittedBy,
	).Scan(&a.ID, &a.CreatedAt)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+assessmentColumns+`
		FROM qualis_assessments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanAssessments(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM qualis_assessments WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.ParticipantID != "" {
		n++
		query += fmt.Sprintf(" AND participant_id = $%d", n)
		args = append(args, filter.ParticipantID)
	}
	if filter.Questionnaire != "" {
		n++
		query += fmt.Sprintf(" AND questionnaire = $%d", n)
		args = append(args, filter.Questionnaire)
	}
	if filter.Timepoint != "" {
		n++
		query += fmt.Sprintf(" AND timepoint = $%d", n)
		args = append(args, filter.Timepoint)
	}

	query += " ORDER BY created_at ASC, id ASC"

	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAssessments(rows)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*AssessmentStats, error) {
	stats := &AssessmentStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT participant_id),
			COALESCE(AVG(total), 0)::float8,
			MAX(created_at)
		FROM qualis_assessments`,
	).Scan(&stats.TotalAssessments, &stats.DistinctParticipants, &stats.MeanTotal, &stats.LastSubmittedAt)
	return stats, err
}

func scanAssessments(rows pgx.Rows) ([]*Assessment, error) {
	var list []*Assessment
	for rows.Next() {
		a := &Assessment{}
		var answersJSON, scoresJSON []byte
		if err := rows.Scan(
			&a.ID, &a.ParticipantID, &a.Questionnaire, &a.QuestionnaireVersion, &a.Timepoint,
			&answersJSON, &scoresJSON, &a.Total, &a.Prorated,
			&a.Source, &a.SubmittedBy, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := decodeScored(a, answersJSON, scoresJSON); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func decodeScored(a *Assessment, answersJSON, scoresJSON []byte) error {
	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &a.Scores); err != nil {
			return fmt.Errorf("decode scores: %w", err)
		}
	}
	if len(a.Prorated) == 0 {
		a.Prorated = nil
	}
	return nil
}
