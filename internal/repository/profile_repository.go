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

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrTutorProfileNotFound = errors.New("tutor profile not found")
)

// Profile is the shared identity row for both tutors and students.
type Profile struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	PhotoURL     string
	City         string
	Area         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TutorProfile carries the matching attributes. Upserted wholesale by the
// profile edit flow, keyed by user id.
type TutorProfile struct {
	UserID            uuid.UUID
	Subjects          []string
	City              string
	Area              string
	HourlyRate        float64
	Verified          bool
	Rating            float32
	ProfileCompletion int
	UpdatedAt         time.Time
}

type ProfileRepository interface {
	Create(ctx context.Context, p Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error)

	GetTutorProfile(ctx context.Context, userID uuid.UUID) (TutorProfile, error)
	UpsertTutorProfile(ctx context.Context, tp TutorProfile) error
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p Profile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO profiles (id, email, password_hash, full_name, photo_url, city, area, role)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Email, p.PasswordHash, p.FullName, p.PhotoURL, p.City, p.Area, p.Role,
	)
	return err
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, photo_url, city, area, role, created_at, updated_at
		 FROM profiles WHERE id = $1`,
		id,
	)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) GetByEmail(ctx context.Context, email string) (Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, photo_url, city, area, role, created_at, updated_at
		 FROM profiles WHERE email = $1`,
		email,
	)
	return scanProfile(row)
}

// FindByIDs resolves a batch of profile ids in one query; missing ids are
// simply absent from the result map.
func (r *PostgresProfileRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	out := make(map[uuid.UUID]Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, email, password_hash, full_name, photo_url, city, area, role, created_at, updated_at
		 FROM profiles WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.PhotoURL,
			&p.City, &p.Area, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) GetTutorProfile(ctx context.Context, userID uuid.UUID) (TutorProfile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT user_id, subjects, city, area, hourly_rate, verified, rating, profile_completion, updated_at
		 FROM tutor_profiles WHERE user_id = $1`,
		userID,
	)

	var tp TutorProfile
	err := row.Scan(&tp.UserID, &tp.Subjects, &tp.City, &tp.Area, &tp.HourlyRate,
		&tp.Verified, &tp.Rating, &tp.ProfileCompletion, &tp.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return TutorProfile{}, ErrTutorProfileNotFound
		}
		return TutorProfile{}, err
	}
	return tp, nil
}

func (r *PostgresProfileRepository) UpsertTutorProfile(ctx context.Context, tp TutorProfile) error {
	if tp.UpdatedAt.IsZero() {
		tp.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO tutor_profiles (user_id, subjects, city, area, hourly_rate, verified, rating, profile_completion, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (user_id) DO UPDATE SET
			subjects = EXCLUDED.subjects,
			city = EXCLUDED.city,
			area = EXCLUDED.area,
			hourly_rate = EXCLUDED.hourly_rate,
			verified = EXCLUDED.verified,
			rating = EXCLUDED.rating,
			profile_completion = EXCLUDED.profile_completion,
			updated_at = EXCLUDED.updated_at`,
		tp.UserID, tp.Subjects, tp.City, tp.Area, tp.HourlyRate,
		tp.Verified, tp.Rating, tp.ProfileCompletion, tp.UpdatedAt,
	)
	return err
}

type profileRow interface {
	Scan(dest ...any) error
}

func scanProfile(row profileRow) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.PhotoURL,
		&p.City, &p.Area, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return p, nil
}
