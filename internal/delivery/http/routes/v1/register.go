package v1

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	"tutorhub/internal/delivery/http/handler"
	"tutorhub/internal/delivery/http/middleware"
	"tutorhub/internal/feed"
	"tutorhub/internal/infrastructure/cache"
	"tutorhub/internal/pkg/jwt"
	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
	"tutorhub/internal/usecase"
)

type Deps struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Bus    *realtime.Bus
	Hub    *realtime.Hub
	Logger *zap.Logger
}

func Register(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		deps.Config.JWT.AccessSecret,
		deps.Config.JWT.RefreshSecret,
		deps.Config.JWT.AccessExpiresIn,
		deps.Config.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	profileRepo := repository.NewPostgresProfileRepository(deps.DB)
	requirementRepo := repository.NewPostgresRequirementRepository(deps.DB)
	matchRepo := repository.NewPostgresMatchRepository(deps.DB)
	messageRepo := repository.NewPostgresMessageRepository(deps.DB, deps.Bus)
	notificationRepo := repository.NewPostgresNotificationRepository(deps.DB, deps.Bus)

	authUC := usecase.NewAuth(profileRepo, jwtSvc)
	profileUC := usecase.NewProfiles(profileRepo)
	feedUC := usecase.NewRequirementFeed(requirementRepo, profileRepo, matchRepo, deps.Logger)
	respondUC := usecase.NewResponder(requirementRepo, matchRepo, messageRepo, notificationRepo, deps.Bus, deps.Logger)
	notificationUC := usecase.NewNotificationFeed(notificationRepo, profileRepo, deps.Cache, deps.Config.Feed.RecentNotifications, deps.Logger)
	messageUC := usecase.NewMessages(messageRepo, deps.Cache, deps.Logger)

	authHandler := handler.NewAuthHandler(authUC)
	profileHandler := handler.NewProfileHandler(profileUC)
	requirementHandler := handler.NewRequirementHandler(feedUC, respondUC)
	notificationHandler := handler.NewNotificationHandler(notificationUC)
	messageHandler := handler.NewMessageHandler(messageUC)
	wsHandler := handler.NewWSHandler(deps.Hub, jwtSvc, feed.Deps{
		Bus:           deps.Bus,
		Notifications: notificationUC,
		Messages:      messageUC,
		Profiles:      profileRepo,
		Logger:        deps.Logger,
		RecentLimit:   deps.Config.Feed.RecentNotifications,
	}, deps.Logger)

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	profileHandler.RegisterRoutes(protected.Group("/profile"))
	requirementHandler.RegisterRoutes(protected.Group("/requirements"))
	notificationHandler.RegisterRoutes(protected.Group("/notifications"))
	messageHandler.RegisterRoutes(protected.Group("/messages"))

	// The ws route authenticates via query token inside the handler; the
	// bearer middleware cannot see websocket handshakes from browsers.
	wsHandler.RegisterRoutes(r.Group("/ws"))
}
