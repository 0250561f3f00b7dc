package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
)

func respondFixture() (*stubRequirementRepo, *stubMatchRepo, *stubMessageRepo, *stubNotificationRepo, *stubBus, repository.Requirement) {
	req := repository.Requirement{
		ID:        uuid.New(),
		StudentID: uuid.New(),
		Subject:   "Mathematics",
		Location:  "Pune",
		Status:    repository.RequirementStatusActive,
	}
	reqs := &stubRequirementRepo{byID: map[uuid.UUID]repository.Requirement{req.ID: req}}
	return reqs, &stubMatchRepo{}, &stubMessageRepo{}, &stubNotificationRepo{}, &stubBus{}, req
}

func TestResponder_Respond_InvalidDecision(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)

	_, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: req.ID,
		TutorID:       uuid.New(),
		Decision:      "maybe",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(matches.upserts) != 0 {
		t.Fatalf("no upsert expected for invalid decision")
	}
}

func TestResponder_Respond_UnknownRequirement(t *testing.T) {
	reqs, matches, messages, notifications, bus, _ := respondFixture()
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)

	_, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: uuid.New(),
		TutorID:       uuid.New(),
		Decision:      repository.MatchStatusInterested,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResponder_Respond_UpsertFailureAbortsSideEffects(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	matches.upsertErr = errors.New("db down")
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)

	_, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: req.ID,
		TutorID:       uuid.New(),
		Decision:      repository.MatchStatusInterested,
	})
	if !errors.Is(err, ErrPrimaryWriteFailed) {
		t.Fatalf("expected ErrPrimaryWriteFailed, got %v", err)
	}
	if len(messages.inserted) != 0 {
		t.Fatalf("chat must not be seeded when the match write fails")
	}
	if len(notifications.inserted) != 0 {
		t.Fatalf("notification must not be sent when the match write fails")
	}
	if len(bus.published()) != 0 {
		t.Fatalf("no reload signal expected when the match write fails")
	}
}

func TestResponder_Respond_Interested(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)
	tutorID := uuid.New()

	out, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: req.ID,
		TutorID:       tutorID,
		Decision:      repository.MatchStatusInterested,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !out.ChatSeeded || !out.NotificationSent {
		t.Fatalf("expected chat seeded and notification sent, got %+v", out)
	}

	if len(matches.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(matches.upserts))
	}
	m := matches.upserts[0]
	if m.RequirementID != req.ID || m.TutorID != tutorID || m.Status != repository.MatchStatusInterested {
		t.Fatalf("unexpected match row %+v", m)
	}

	if len(messages.inserted) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(messages.inserted))
	}
	seed := messages.inserted[0]
	if seed.SenderID != tutorID || seed.ReceiverID != req.StudentID {
		t.Fatalf("seed message has wrong parties: %+v", seed)
	}
	if !strings.Contains(seed.Content, "Mathematics") {
		t.Fatalf("default seed message should name the subject, got %q", seed.Content)
	}

	if len(notifications.inserted) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications.inserted))
	}
	n := notifications.inserted[0]
	if n.UserID != req.StudentID || n.Type != repository.NotificationTypeInterest {
		t.Fatalf("unexpected notification %+v", n)
	}

	events := bus.published()
	if len(events) != 1 || events[0].Table != realtime.TableMatches || events[0].Op != realtime.OpInsert {
		t.Fatalf("expected one match insert event, got %+v", events)
	}
}

func TestResponder_Respond_DeclineSkipsChat(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)

	out, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: req.ID,
		TutorID:       uuid.New(),
		Decision:      repository.MatchStatusNotInterested,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out.ChatSeeded {
		t.Fatalf("decline must not seed a chat")
	}
	if len(messages.inserted) != 0 {
		t.Fatalf("decline must not insert a message")
	}
	if len(notifications.inserted) != 1 {
		t.Fatalf("student is still notified on decline")
	}
	if notifications.inserted[0].Type != repository.NotificationTypeRequirementResponse {
		t.Fatalf("decline notification type should be %s, got %s",
			repository.NotificationTypeRequirementResponse, notifications.inserted[0].Type)
	}
}

func TestResponder_Respond_SideEffectFailureStillSucceeds(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	messages.insertErr = errors.New("chat store down")
	notifications.insertErr = errors.New("notification store down")
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)

	out, err := uc.Respond(context.Background(), RespondInput{
		RequirementID: req.ID,
		TutorID:       uuid.New(),
		Decision:      repository.MatchStatusInterested,
	})
	if err != nil {
		t.Fatalf("best-effort failures must not fail the call, got %v", err)
	}
	if out.ChatSeeded || out.NotificationSent {
		t.Fatalf("outcome should report the degraded steps, got %+v", out)
	}
	if len(matches.upserts) != 1 {
		t.Fatalf("match upsert should have committed")
	}
	if len(bus.published()) != 1 {
		t.Fatalf("reload signal still expected after degraded side effects")
	}
}

func TestResponder_Respond_RepeatUpsertsSameKey(t *testing.T) {
	reqs, matches, messages, notifications, bus, req := respondFixture()
	uc := NewResponder(reqs, matches, messages, notifications, bus, nil)
	tutorID := uuid.New()

	for _, decision := range []string{repository.MatchStatusInterested, repository.MatchStatusNotInterested} {
		if _, err := uc.Respond(context.Background(), RespondInput{
			RequirementID: req.ID,
			TutorID:       tutorID,
			Decision:      decision,
		}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	if len(matches.upserts) != 2 {
		t.Fatalf("expected 2 upserts, got %d", len(matches.upserts))
	}
	first, second := matches.upserts[0], matches.upserts[1]
	if first.RequirementID != second.RequirementID || first.TutorID != second.TutorID {
		t.Fatalf("repeat responses must target the same composite key")
	}
	if second.Status != repository.MatchStatusNotInterested {
		t.Fatalf("later response should carry the new status, got %s", second.Status)
	}
}
