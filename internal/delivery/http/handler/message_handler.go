package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"tutorhub/internal/delivery/http/dto"
	"tutorhub/internal/delivery/http/middleware"
	"tutorhub/internal/pkg/response"
	"tutorhub/internal/repository"
	"tutorhub/internal/usecase"
)

const defaultConversationLimit = 50

type MessageHandler struct {
	uc usecase.MessageUsecase
}

func NewMessageHandler(uc usecase.MessageUsecase) *MessageHandler {
	return &MessageHandler{uc: uc}
}

func (h *MessageHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/unread-count", h.UnreadCount)
	r.Get("/with/:user_id", h.Conversation)
	r.Post("/with/:user_id", h.Send)
	r.Post("/with/:user_id/read", h.MarkRead)
}

func (h *MessageHandler) UnreadCount(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	count, err := h.uc.UnreadCount(c.Context(), userID)
	if err != nil {
		return mapMessageError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.UnreadCountResponse{UnreadCount: count})
}

func (h *MessageHandler) Conversation(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	otherID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	limit := defaultConversationLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := h.uc.Conversation(c.Context(), userID, otherID, limit)
	if err != nil {
		return mapMessageError(err)
	}

	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MessageHandler) Send(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	otherID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.SendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	msg, err := h.uc.Send(c.Context(), userID, otherID, req.Content)
	if err != nil {
		return mapMessageError(err)
	}
	return response.Success(c, fiber.StatusCreated, "message sent", messageResponse(msg))
}

func (h *MessageHandler) MarkRead(c fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	otherID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.MarkConversationRead(c.Context(), userID, otherID); err != nil {
		return mapMessageError(err)
	}
	return response.Success(c, fiber.StatusOK, "conversation marked read", nil)
}

func messageResponse(m repository.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Content:    m.Content,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}

func mapMessageError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
