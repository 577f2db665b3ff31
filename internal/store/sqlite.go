package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // driver: sqlite
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS qualis_assessments (
  id TEXT PRIMARY KEY,
  participant_id TEXT NOT NULL,
  questionnaire TEXT NOT NULL,
  questionnaire_version TEXT NOT NULL DEFAULT '',
  timepoint TEXT NOT NULL DEFAULT '',
  answers TEXT NOT NULL,
  scores TEXT NOT NULL,
  total INTEGER NOT NULL,
  prorated TEXT NOT NULL DEFAULT '[]',
  source TEXT NOT NULL DEFAULT '',
  submitted_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qualis_assessments_participant
  ON qualis_assessments (participant_id, created_at);
`

const defaultSQLiteDSN = "file:qualis.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// SQLiteStore is the single-node Store backed by modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer; also keeps :memory: databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAssessment(ctx context.Context, a *Assessment) error {
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
	proratedJSON, err := json.Marshal(prorated)
	if err != nil {
		return fmt.Errorf("encode prorated: %w", err)
	}

	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO qualis_assessments (id, participant_id, questionnaire, questionnaire_version, timepoint,
			answers, scores, total, prorated, source, submitted_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), a.ParticipantID, a.Questionnaire, a.QuestionnaireVersion, a.Timepoint,
		string(answersJSON), string(scoresJSON), a.Total, string(proratedJSON),
		a.Source, a.SubmittedBy, createdAt.UnixNano(),
	)
	if err != nil {
		return err
	}
	a.ID = id
	a.CreatedAt = createdAt
	return nil
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assessmentColumns+`
		FROM qualis_assessments WHERE id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list, err := scanSQLiteAssessments(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM qualis_assessments WHERE 1=1`
	args := []interface{}{}

	if filter.ParticipantID != "" {
		query += " AND participant_id = ?"
		args = append(args, filter.ParticipantID)
	}
	if filter.Questionnaire != "" {
		query += " AND questionnaire = ?"
		args = append(args, filter.Questionnaire)
	}
	if filter.Timepoint != "" {
		query += " AND timepoint = ?"
		args = append(args, filter.Timepoint)
	}

	query += " ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?"
	args = append(args, filter.limit(), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSQLiteAssessments(rows)
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*AssessmentStats, error) {
	stats := &AssessmentStats{}
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT participant_id),
			COALESCE(AVG(total), 0.0),
			MAX(created_at)
		FROM qualis_assessments`,
	).Scan(&stats.TotalAssessments, &stats.DistinctParticipants, &stats.MeanTotal, &last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		t := time.Unix(0, last.Int64).UTC()
		stats.LastSubmittedAt = &t
	}
	return stats, nil
}

func scanSQLiteAssessments(rows *sql.Rows) ([]*Assessment, error) {
	var list []*Assessment
	for rows.Next() {
		a := &Assessment{}
		var id, answersJSON, scoresJSON, proratedJSON string
		var createdAt int64
		if err := rows.Scan(
			&id, &a.ParticipantID, &a.Questionnaire, &a.QuestionnaireVersion, &a.Timepoint,
			&answersJSON, &scoresJSON, &a.Total, &proratedJSON,
			&a.Source, &a.SubmittedBy, &createdAt,
		); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse id %q: %w", id, err)
		}
		a.ID = parsed
		a.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(proratedJSON), &a.Prorated); err != nil {
			return nil, fmt.Errorf("decode prorated: %w", err)
		}
		if err := decodeScored(a, []byte(answersJSON), []byte(scoresJSON)); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
