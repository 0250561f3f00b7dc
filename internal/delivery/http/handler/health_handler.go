package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"tutorhub/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
}

func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"status": "up"})
}

// Readyz fails only on the database: redis is a graceful-bypass dependency
// and its state is reported, not gated on.
func (h *HealthHandler) Readyz(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	out := fiber.Map{"database": "up", "cache": "up"}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			out["database"] = "down"
			return response.Error(c, fiber.StatusServiceUnavailable, "not ready", out)
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			out["cache"] = "down"
		}
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
