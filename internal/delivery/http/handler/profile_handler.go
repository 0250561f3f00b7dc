package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"tutorhub/internal/delivery/http/dto"
	"tutorhub/internal/delivery/http/middleware"
	"tutorhub/internal/pkg/response"
	"tutorhub/internal/repository"
	"tutorhub/internal/usecase"
)

type ProfileHandler struct {
	uc usecase.ProfileUsecase
}

func NewProfileHandler(uc usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.Get)
	r.Put("/", h.Upsert)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	view, err := h.uc.Get(c.Context(), userID)
	if err != nil {
		return mapProfileError(err)
	}

	out := tutorProfileResponse(view.Tutor)
	out.Email = view.Profile.Email
	out.FullName = view.Profile.FullName
	out.PhotoURL = view.Profile.PhotoURL
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *ProfileHandler) Upsert(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var req dto.TutorProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	tp, err := h.uc.Upsert(c.Context(), userID, usecase.TutorProfileInput{
		Subjects:          req.Subjects,
		City:              req.City,
		Area:              req.Area,
		HourlyRate:        req.HourlyRate,
		ProfileCompletion: req.ProfileCompletion,
	})
	if err != nil {
		return mapProfileError(err)
	}

	return response.Success(c, fiber.StatusOK, "profile saved", tutorProfileResponse(tp))
}

func tutorProfileResponse(tp repository.TutorProfile) dto.TutorProfileResponse {
	subjects := tp.Subjects
	if subjects == nil {
		subjects = []string{}
	}
	return dto.TutorProfileResponse{
		UserID:            tp.UserID.String(),
		Subjects:          subjects,
		City:              tp.City,
		Area:              tp.Area,
		HourlyRate:        tp.HourlyRate,
		Verified:          tp.Verified,
		Rating:            tp.Rating,
		ProfileCompletion: tp.ProfileCompletion,
		UpdatedAt:         tp.UpdatedAt,
	}
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
