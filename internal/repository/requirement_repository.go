package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tutorhub/internal/database"
)

var ErrRequirementNotFound = errors.New("requirement not found")

const (
	RequirementStatusActive = "active"
	RequirementStatusClosed = "closed"
)

// Requirement is a student-posted tutoring request. Tutors only ever read
// these; status flips to closed externally.
type Requirement struct {
	ID          uuid.UUID
	StudentID   uuid.UUID
	Subject     string
	Location    string
	Description string
	Budget      *float64
	Status      string
	CreatedAt   time.Time
}

type RequirementRepository interface {
	ListActive(ctx context.Context) ([]Requirement, error)
	GetByID(ctx context.Context, id uuid.UUID) (Requirement, error)
}

type PostgresRequirementRepository struct {
	db database.DB
}

func NewPostgresRequirementRepository(db database.DB) *PostgresRequirementRepository {
	return &PostgresRequirementRepository{db: db}
}

func (r *PostgresRequirementRepository) ListActive(ctx context.Context) ([]Requirement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, student_id, subject, location, description, budget, status, created_at
		 FROM requirements
		 WHERE status = $1
		 ORDER BY created_at DESC`,
		RequirementStatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Requirement, 0)
	for rows.Next() {
		var req Requirement
		if err := rows.Scan(&req.ID, &req.StudentID, &req.Subject, &req.Location,
			&req.Description, &req.Budget, &req.Status, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRequirementRepository) GetByID(ctx context.Context, id uuid.UUID) (Requirement, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, student_id, subject, location, description, budget, status, created_at
		 FROM requirements
		 WHERE id = $1`,
		id,
	)

	var req Requirement
	err := row.Scan(&req.ID, &req.StudentID, &req.Subject, &req.Location,
		&req.Description, &req.Budget, &req.Status, &req.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Requirement{}, ErrRequirementNotFound
		}
		return Requirement{}, err
	}
	return req, nil
}
