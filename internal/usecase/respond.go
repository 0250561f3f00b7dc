package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
)

// RespondInput is a tutor's decision on one requirement.
type RespondInput struct {
	RequirementID uuid.UUID
	TutorID       uuid.UUID
	Decision      string
	Message       string
	ProposedRate  *float64
}

// RespondOutcome reports the pipeline result. ChatSeeded / NotificationSent
// are false when the corresponding best-effort step failed or was skipped;
// the overall call still succeeds as long as the match upsert did.
type RespondOutcome struct {
	Match            repository.Match
	ChatSeeded       bool
	NotificationSent bool
}

type RespondUsecase interface {
	Respond(ctx context.Context, in RespondInput) (RespondOutcome, error)
}

// Responder runs the response pipeline: must-succeed match upsert, then
// best-effort chat seed and student notification, then a reload signal over
// the realtime bus. Steps run strictly in that order.
type Responder struct {
	requirements  repository.RequirementRepository
	matches       repository.MatchRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	bus           realtime.Publisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewResponder(
	requirements repository.RequirementRepository,
	matches repository.MatchRepository,
	messages repository.MessageRepository,
	notifications repository.NotificationRepository,
	bus realtime.Publisher,
	logger *zap.Logger,
) *Responder {
	return &Responder{
		requirements:  requirements,
		matches:       matches,
		messages:      messages,
		notifications: notifications,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

func (u *Responder) Respond(ctx context.Context, in RespondInput) (RespondOutcome, error) {
	if in.TutorID == uuid.Nil {
		return RespondOutcome{}, ErrUnauthorized
	}
	if in.RequirementID == uuid.Nil {
		return RespondOutcome{}, ErrInvalidInput
	}
	if in.Decision != repository.MatchStatusInterested && in.Decision != repository.MatchStatusNotInterested {
		return RespondOutcome{}, ErrInvalidInput
	}

	// The student id and subject feed the side-effect steps, so the
	// requirement is resolved before anything is written.
	req, err := u.requirements.GetByID(ctx, in.RequirementID)
	if err != nil {
		if errors.Is(err, repository.ErrRequirementNotFound) {
			return RespondOutcome{}, ErrNotFound
		}
		return RespondOutcome{}, ErrInternal
	}

	match := repository.Match{
		RequirementID:   in.RequirementID,
		TutorID:         in.TutorID,
		Status:          in.Decision,
		ResponseMessage: in.Message,
		ProposedRate:    in.ProposedRate,
		UpdatedAt:       u.now().UTC(),
	}

	// Must-succeed step. A failure here aborts the whole operation with no
	// side effects written.
	if err := u.matches.Upsert(ctx, match); err != nil {
		if u.logger != nil {
			u.logger.Error("respond: match upsert failed",
				zap.String("requirement_id", in.RequirementID.String()),
				zap.String("tutor_id", in.TutorID.String()),
				zap.Error(err))
		}
		return RespondOutcome{}, fmt.Errorf("%w: %v", ErrPrimaryWriteFailed, err)
	}

	out := RespondOutcome{Match: match}

	if in.Decision == repository.MatchStatusInterested {
		out.ChatSeeded = u.seedChat(ctx, req, in)
	}
	out.NotificationSent = u.notifyStudent(ctx, req, match)

	// Reload signal: feed sessions of this tutor observe the match event and
	// push a requirements reload so hasResponded flips immediately.
	if u.bus != nil {
		u.bus.Publish(ctx, realtime.NewEvent(realtime.TableMatches, realtime.OpInsert, realtime.MatchPayload{
			RequirementID: in.RequirementID.String(),
			TutorID:       in.TutorID.String(),
			Status:        in.Decision,
		}))
	}

	return out, nil
}

// seedChat opens the conversation with the student. Best-effort: a failure
// is logged for operators and reported through the outcome, never as an
// error to the caller.
func (u *Responder) seedChat(ctx context.Context, req repository.Requirement, in RespondInput) bool {
	content := in.Message
	if content == "" {
		content = fmt.Sprintf("Hi! I saw your requirement for %s and I'd be glad to help. Shall we discuss the details?", req.Subject)
	}

	_, err := u.messages.Insert(ctx, repository.Message{
		SenderID:   in.TutorID,
		ReceiverID: req.StudentID,
		Content:    content,
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Warn("respond: chat seed failed, response still recorded",
				zap.String("requirement_id", req.ID.String()),
				zap.Error(err))
		}
		return false
	}
	return true
}

// notifyStudent records the decision for the student's badge feed.
// Best-effort, same policy as seedChat.
func (u *Responder) notifyStudent(ctx context.Context, req repository.Requirement, match repository.Match) bool {
	notifType := repository.NotificationTypeRequirementResponse
	title := "A tutor responded to your requirement"
	body := fmt.Sprintf("A tutor has responded to your %s requirement.", req.Subject)
	if match.Status == repository.MatchStatusInterested {
		notifType = repository.NotificationTypeInterest
		title = "A tutor is interested"
		body = fmt.Sprintf("A tutor is interested in your %s requirement.", req.Subject)
	}

	data, err := json.Marshal(map[string]any{
		"requirement_id": match.RequirementID,
		"tutor_id":       match.TutorID,
		"status":         match.Status,
		"message":        match.ResponseMessage,
		"proposed_rate":  match.ProposedRate,
	})
	if err != nil {
		data = nil
	}

	_, err = u.notifications.Insert(ctx, repository.Notification{
		UserID:  req.StudentID,
		Type:    notifType,
		Title:   title,
		Message: body,
		Data:    data,
	})
	if err != nil {
		if u.logger != nil {
			u.logger.Warn("respond: student notification failed, response still recorded",
				zap.String("requirement_id", req.ID.String()),
				zap.Error(err))
		}
		return false
	}
	return true
}
