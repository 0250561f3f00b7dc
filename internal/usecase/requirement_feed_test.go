package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"tutorhub/internal/repository"
)

func TestRequirementFeed_LoadRequirements_FiltersAndAnnotates(t *testing.T) {
	tutorID := uuid.New()
	studentA := uuid.New()
	studentB := uuid.New()

	mathReq := repository.Requirement{
		ID: uuid.New(), StudentID: studentA,
		Subject: "Mathematics", Location: "Pune, Kothrud",
		Status: repository.RequirementStatusActive,
	}
	danceReq := repository.Requirement{
		ID: uuid.New(), StudentID: studentB,
		Subject: "Dance", Location: "Mumbai",
		Status: repository.RequirementStatusActive,
	}

	profiles := newStubProfileRepo()
	profiles.profiles[studentA] = repository.Profile{ID: studentA, FullName: "Asha", City: "Pune"}
	profiles.tutors[tutorID] = repository.TutorProfile{
		UserID:   tutorID,
		Subjects: []string{"Math", "Physics"},
		City:     "Pune",
	}

	matches := &stubMatchRepo{byReq: map[uuid.UUID]repository.Match{
		mathReq.ID: {RequirementID: mathReq.ID, TutorID: tutorID, Status: repository.MatchStatusInterested},
	}}

	uc := NewRequirementFeed(
		&stubRequirementRepo{active: []repository.Requirement{mathReq, danceReq}},
		profiles, matches, nil,
	)

	items, err := uc.LoadRequirements(context.Background(), tutorID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only the Mathematics/Pune requirement, got %d items", len(items))
	}
	item := items[0]
	if item.Requirement.ID != mathReq.ID {
		t.Fatalf("wrong requirement survived the filter")
	}
	if !item.HasResponded {
		t.Fatalf("existing match row must set HasResponded")
	}
	if item.Student == nil || item.Student.FullName != "Asha" {
		t.Fatalf("student identity not joined: %+v", item.Student)
	}
}

func TestRequirementFeed_LoadRequirements_NoProfileSeesEverything(t *testing.T) {
	tutorID := uuid.New()
	reqs := []repository.Requirement{
		{ID: uuid.New(), StudentID: uuid.New(), Subject: "Piano", Location: "Delhi", Status: repository.RequirementStatusActive},
		{ID: uuid.New(), StudentID: uuid.New(), Subject: "Chemistry", Location: "Pune", Status: repository.RequirementStatusActive},
	}

	uc := NewRequirementFeed(
		&stubRequirementRepo{active: reqs},
		newStubProfileRepo(), &stubMatchRepo{}, nil,
	)

	items, err := uc.LoadRequirements(context.Background(), tutorID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("tutor without a profile should see the whole pool, got %d", len(items))
	}
}

func TestRequirementFeed_LoadRequirements_PoolFailureDegradesToEmpty(t *testing.T) {
	uc := NewRequirementFeed(
		&stubRequirementRepo{activeErr: errors.New("db down")},
		newStubProfileRepo(), &stubMatchRepo{}, nil,
	)

	items, err := uc.LoadRequirements(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("pool failure must degrade, not error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %d items", len(items))
	}
}

func TestRequirementFeed_LoadRequirements_IdentityFailureDegrades(t *testing.T) {
	tutorID := uuid.New()
	req := repository.Requirement{
		ID: uuid.New(), StudentID: uuid.New(),
		Subject: "English", Location: "Pune",
		Status: repository.RequirementStatusActive,
	}

	profiles := newStubProfileRepo()
	profiles.findErr = errors.New("join failed")

	uc := NewRequirementFeed(
		&stubRequirementRepo{active: []repository.Requirement{req}},
		profiles, &stubMatchRepo{findErr: errors.New("lookup failed")}, nil,
	)

	items, err := uc.LoadRequirements(context.Background(), tutorID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("requirement itself must survive identity degrade")
	}
	if items[0].Student != nil {
		t.Fatalf("student identity should be absent after join failure")
	}
	if items[0].HasResponded {
		t.Fatalf("match lookup failure should leave HasResponded false")
	}
}

func TestRequirementFeed_LoadRequirements_Unauthorized(t *testing.T) {
	uc := NewRequirementFeed(&stubRequirementRepo{}, newStubProfileRepo(), &stubMatchRepo{}, nil)
	if _, err := uc.LoadRequirements(context.Background(), uuid.Nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequirementFeed_GetRequirement_NotFound(t *testing.T) {
	uc := NewRequirementFeed(
		&stubRequirementRepo{byID: map[uuid.UUID]repository.Requirement{}},
		newStubProfileRepo(), &stubMatchRepo{}, nil,
	)
	if _, err := uc.GetRequirement(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequirementFeed_GetRequirement_Success(t *testing.T) {
	tutorID := uuid.New()
	studentID := uuid.New()
	req := repository.Requirement{
		ID: uuid.New(), StudentID: studentID,
		Subject: "Physics", Location: "Pune",
		Status: repository.RequirementStatusActive,
	}

	profiles := newStubProfileRepo()
	profiles.profiles[studentID] = repository.Profile{ID: studentID, FullName: "Ravi"}

	uc := NewRequirementFeed(
		&stubRequirementRepo{byID: map[uuid.UUID]repository.Requirement{req.ID: req}},
		profiles, &stubMatchRepo{}, nil,
	)

	item, err := uc.GetRequirement(context.Background(), tutorID, req.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if item.Requirement.ID != req.ID || item.Student == nil || item.Student.FullName != "Ravi" {
		t.Fatalf("unexpected item %+v", item)
	}
}
