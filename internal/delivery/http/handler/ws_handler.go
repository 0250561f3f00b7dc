package handler

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tutorhub/internal/feed"
	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades the dashboard socket. Browsers cannot set an
// Authorization header on a websocket handshake, so the access token rides
// in the query string instead.
type WSHandler struct {
	hub    *realtime.Hub
	jwt    jwt.Service
	deps   feed.Deps
	logger *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, jwtSvc jwt.Service, deps feed.Deps, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwtSvc, deps: deps, logger: logger}
}

func (h *WSHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/feed", h.Feed)
}

func (h *WSHandler) Feed(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	userID, ok := h.authenticate(c.Query("token"))
	if !ok {
		return fiber.ErrUnauthorized
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("ws upgrade failed", zap.Error(err))
			}
			return
		}

		// The sink can fire from bus goroutines before the client exists;
		// the mutex covers that window.
		var (
			mu     sync.Mutex
			client *realtime.Client
		)
		sink := func(message []byte) {
			mu.Lock()
			cl := client
			mu.Unlock()
			if cl != nil {
				cl.Send(message)
			}
		}

		session, err := feed.Open(r.Context(), userID, sink, h.deps)
		if err != nil {
			_ = conn.Close()
			return
		}

		mu.Lock()
		client = realtime.NewClient(h.hub, userID, conn, session.Close)
		mu.Unlock()
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()

		if snapshot := session.Snapshot(); snapshot != nil {
			client.Send(snapshot)
		}
	})

	return fiberHandler(c)
}

func (h *WSHandler) authenticate(token string) (uuid.UUID, bool) {
	if token == "" {
		return uuid.Nil, false
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		return uuid.Nil, false
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
