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

type NotificationHandler struct {
	uc usecase.NotificationFeedUsecase
}

func NewNotificationHandler(uc usecase.NotificationFeedUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/recent", h.Recent)
	r.Post("/:notification_id/read", h.MarkRead)
}

func (h *NotificationHandler) Recent(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	views, err := h.uc.Recent(c.Context(), userID)
	if err != nil {
		return mapNotificationError(err)
	}

	out := make([]dto.NotificationResponse, 0, len(views))
	for _, v := range views {
		out = append(out, notificationResponse(v))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	notificationID, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.MarkRead(c.Context(), userID, notificationID); err != nil {
		return mapNotificationError(err)
	}
	return response.Success(c, fiber.StatusOK, "notification marked read", nil)
}

func notificationResponse(v usecase.NotificationView) dto.NotificationResponse {
	out := dto.NotificationResponse{
		ID:        v.Notification.ID.String(),
		Type:      v.Notification.Type,
		Title:     v.Notification.Title,
		Message:   v.Notification.Message,
		Data:      v.Notification.Data,
		IsRead:    v.Notification.IsRead,
		CreatedAt: v.Notification.CreatedAt,
	}
	if v.Student != nil {
		out.Student = &dto.StudentResponse{
			ID:       v.Student.ID.String(),
			FullName: v.Student.FullName,
			PhotoURL: v.Student.PhotoURL,
			City:     v.Student.City,
			Area:     v.Student.Area,
		}
	}
	return out
}

func mapNotificationError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Notification not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
