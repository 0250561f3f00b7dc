package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/domain/matching"
	"tutorhub/internal/repository"
)

// StudentIdentity is the display slice of a student profile merged into a
// requirement card.
type StudentIdentity struct {
	ID       uuid.UUID
	FullName string
	PhotoURL string
	City     string
	Area     string
}

// RequirementItem is one row of the tutor's worklist: the requirement, the
// posting student (nil when the identity join degraded), and whether this
// tutor has already recorded a decision.
type RequirementItem struct {
	Requirement  repository.Requirement
	Student      *StudentIdentity
	HasResponded bool
}

type RequirementFeedUsecase interface {
	LoadRequirements(ctx context.Context, tutorID uuid.UUID) ([]RequirementItem, error)
	GetRequirement(ctx context.Context, tutorID, requirementID uuid.UUID) (RequirementItem, error)
}

type RequirementFeed struct {
	requirements repository.RequirementRepository
	profiles     repository.ProfileRepository
	matches      repository.MatchRepository
	logger       *zap.Logger
}

func NewRequirementFeed(
	requirements repository.RequirementRepository,
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	logger *zap.Logger,
) *RequirementFeed {
	return &RequirementFeed{requirements: requirements, profiles: profiles, matches: matches, logger: logger}
}

// LoadRequirements builds the tutor's current worklist: active requirements
// newest first, student identities batch-joined, filtered through the
// matching engine, annotated with hasResponded. Fetch failures degrade — a
// broken feed renders empty, never as an error screen.
func (u *RequirementFeed) LoadRequirements(ctx context.Context, tutorID uuid.UUID) ([]RequirementItem, error) {
	if tutorID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	pool, err := u.requirements.ListActive(ctx)
	if err != nil {
		u.warn("requirement feed: pool fetch failed", err)
		return []RequirementItem{}, nil
	}

	tutor := u.tutorAttributes(ctx, tutorID)

	relevant := make([]repository.Requirement, 0, len(pool))
	for _, req := range pool {
		if matching.Matches(tutor, matching.Candidate{Subject: req.Subject, Location: req.Location}) {
			relevant = append(relevant, req)
		}
	}

	students := u.studentIdentities(ctx, relevant)
	responded := u.respondedSet(ctx, tutorID, relevant)

	items := make([]RequirementItem, 0, len(relevant))
	for _, req := range relevant {
		item := RequirementItem{Requirement: req, HasResponded: responded[req.ID]}
		if s, ok := students[req.StudentID]; ok {
			item.Student = &s
		}
		items = append(items, item)
	}
	return items, nil
}

func (u *RequirementFeed) GetRequirement(ctx context.Context, tutorID, requirementID uuid.UUID) (RequirementItem, error) {
	if tutorID == uuid.Nil {
		return RequirementItem{}, ErrUnauthorized
	}

	req, err := u.requirements.GetByID(ctx, requirementID)
	if err != nil {
		if errors.Is(err, repository.ErrRequirementNotFound) {
			return RequirementItem{}, ErrNotFound
		}
		return RequirementItem{}, ErrInternal
	}

	item := RequirementItem{Requirement: req}

	students := u.studentIdentities(ctx, []repository.Requirement{req})
	if s, ok := students[req.StudentID]; ok {
		item.Student = &s
	}

	responded := u.respondedSet(ctx, tutorID, []repository.Requirement{req})
	item.HasResponded = responded[req.ID]

	return item, nil
}

// tutorAttributes loads the tutor's matching inputs. A missing or unreadable
// tutor profile yields empty attributes, which the engine treats as
// fail-open: the tutor sees everything until the profile is filled in.
func (u *RequirementFeed) tutorAttributes(ctx context.Context, tutorID uuid.UUID) matching.TutorAttributes {
	tp, err := u.profiles.GetTutorProfile(ctx, tutorID)
	if err != nil {
		if !errors.Is(err, repository.ErrTutorProfileNotFound) {
			u.warn("requirement feed: tutor profile fetch failed", err)
		}
		return matching.TutorAttributes{}
	}
	return matching.TutorAttributes{Subjects: tp.Subjects, City: tp.City, Area: tp.Area}
}

// studentIdentities batch-resolves the distinct student ids in one lookup.
// Failure degrades to cards without student identity.
func (u *RequirementFeed) studentIdentities(ctx context.Context, reqs []repository.Requirement) map[uuid.UUID]StudentIdentity {
	seen := make(map[uuid.UUID]bool, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		if req.StudentID == uuid.Nil || seen[req.StudentID] {
			continue
		}
		seen[req.StudentID] = true
		ids = append(ids, req.StudentID)
	}

	profiles, err := u.profiles.FindByIDs(ctx, ids)
	if err != nil {
		u.warn("requirement feed: student batch lookup failed", err)
		return map[uuid.UUID]StudentIdentity{}
	}

	out := make(map[uuid.UUID]StudentIdentity, len(profiles))
	for id, p := range profiles {
		out[id] = StudentIdentity{
			ID:       p.ID,
			FullName: p.FullName,
			PhotoURL: p.PhotoURL,
			City:     p.City,
			Area:     p.Area,
		}
	}
	return out
}

// respondedSet marks requirements this tutor already has a match row for,
// regardless of the row's status. Failure degrades to no annotation.
func (u *RequirementFeed) respondedSet(ctx context.Context, tutorID uuid.UUID, reqs []repository.Requirement) map[uuid.UUID]bool {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
	}

	rows, err := u.matches.FindByTutorAndRequirements(ctx, tutorID, ids)
	if err != nil {
		u.warn("requirement feed: match status lookup failed", err)
		return map[uuid.UUID]bool{}
	}

	out := make(map[uuid.UUID]bool, len(rows))
	for id := range rows {
		out[id] = true
	}
	return out
}

func (u *RequirementFeed) warn(msg string, err error) {
	if u.logger != nil {
		u.logger.Warn(msg, zap.Error(err))
	}
}
