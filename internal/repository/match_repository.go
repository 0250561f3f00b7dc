package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutorhub/internal/database"
)

const (
	MatchStatusInterested    = "interested"
	MatchStatusNotInterested = "not_interested"
)

// Match is a tutor's recorded decision on one requirement. The composite
// (requirement_id, tutor_id) key plus upsert semantics keep responses
// idempotent: re-responding overwrites, never duplicates.
type Match struct {
	RequirementID   uuid.UUID
	TutorID         uuid.UUID
	Status          string
	ResponseMessage string
	ProposedRate    *float64
	UpdatedAt       time.Time
}

type MatchRepository interface {
	Upsert(ctx context.Context, m Match) error
	FindByTutorAndRequirements(ctx context.Context, tutorID uuid.UUID, requirementIDs []uuid.UUID) (map[uuid.UUID]Match, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) Upsert(ctx context.Context, m Match) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO requirement_tutor_matches (requirement_id, tutor_id, status, response_message, proposed_rate, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (requirement_id, tutor_id) DO UPDATE SET
			status = EXCLUDED.status,
			response_message = EXCLUDED.response_message,
			proposed_rate = EXCLUDED.proposed_rate,
			updated_at = EXCLUDED.updated_at`,
		m.RequirementID, m.TutorID, m.Status, m.ResponseMessage, m.ProposedRate, m.UpdatedAt,
	)
	return err
}

// FindByTutorAndRequirements batch-fetches this tutor's match rows across a
// set of requirement ids, keyed by requirement id.
func (r *PostgresMatchRepository) FindByTutorAndRequirements(ctx context.Context, tutorID uuid.UUID, requirementIDs []uuid.UUID) (map[uuid.UUID]Match, error) {
	out := make(map[uuid.UUID]Match, len(requirementIDs))
	if len(requirementIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT requirement_id, tutor_id, status, response_message, proposed_rate, updated_at
		 FROM requirement_tutor_matches
		 WHERE tutor_id = $1 AND requirement_id = ANY($2)`,
		tutorID, requirementIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.RequirementID, &m.TutorID, &m.Status,
			&m.ResponseMessage, &m.ProposedRate, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out[m.RequirementID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
