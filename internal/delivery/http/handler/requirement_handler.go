package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tutorhub/internal/delivery/http/dto"
	"tutorhub/internal/delivery/http/middleware"
	"tutorhub/internal/pkg/response"
	"tutorhub/internal/usecase"
)

type RequirementHandler struct {
	feed    usecase.RequirementFeedUsecase
	respond usecase.RespondUsecase
}

func NewRequirementHandler(feed usecase.RequirementFeedUsecase, respond usecase.RespondUsecase) *RequirementHandler {
	return &RequirementHandler{feed: feed, respond: respond}
}

func (h *RequirementHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.List)
	r.Get("/:requirement_id", h.Get)
	r.Post("/:requirement_id/respond", h.Respond)
}

func (h *RequirementHandler) List(c fiber.Ctx) error {
	tutorID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.feed.LoadRequirements(c.Context(), tutorID)
	if err != nil {
		return mapRequirementError(err)
	}

	out := make([]dto.RequirementResponse, 0, len(items))
	for _, it := range items {
		out = append(out, requirementResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *RequirementHandler) Get(c fiber.Ctx) error {
	tutorID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	reqID, err := uuid.Parse(c.Params("requirement_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	item, err := h.feed.GetRequirement(c.Context(), tutorID, reqID)
	if err != nil {
		return mapRequirementError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, requirementResponse(item))
}

func (h *RequirementHandler) Respond(c fiber.Ctx) error {
	tutorID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	reqID, err := uuid.Parse(c.Params("requirement_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.RespondRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	out, err := h.respond.Respond(c.Context(), usecase.RespondInput{
		RequirementID: reqID,
		TutorID:       tutorID,
		Decision:      req.Decision,
		Message:       req.Message,
		ProposedRate:  req.ProposedRate,
	})
	if err != nil {
		return mapRequirementError(err)
	}

	// Side-effect failures stay out of the status code: the response was
	// recorded, the flags carry the degraded bits for anyone who cares.
	return response.Success(c, fiber.StatusOK, "response recorded", dto.RespondResponse{
		RequirementID:    out.Match.RequirementID.String(),
		Status:           out.Match.Status,
		ChatSeeded:       out.ChatSeeded,
		NotificationSent: out.NotificationSent,
	})
}

func requirementResponse(it usecase.RequirementItem) dto.RequirementResponse {
	out := dto.RequirementResponse{
		ID:           it.Requirement.ID.String(),
		Subject:      it.Requirement.Subject,
		Location:     it.Requirement.Location,
		Description:  it.Requirement.Description,
		Budget:       it.Requirement.Budget,
		Status:       it.Requirement.Status,
		CreatedAt:    it.Requirement.CreatedAt,
		HasResponded: it.HasResponded,
	}
	if it.Student != nil {
		out.Student = &dto.StudentResponse{
			ID:       it.Student.ID.String(),
			FullName: it.Student.FullName,
			PhotoURL: it.Student.PhotoURL,
			City:     it.Student.City,
			Area:     it.Student.Area,
		}
	}
	return out
}

func mapRequirementError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Requirement not found", nil, err)
	case errors.Is(err, usecase.ErrPrimaryWriteFailed):
		// Retryable: the match record did not commit, nothing else was written.
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Could not record response, please retry", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
