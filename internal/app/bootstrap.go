package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"tutorhub/internal/delivery/http/handler"
	"tutorhub/internal/delivery/http/middleware"
	v1 "tutorhub/internal/delivery/http/routes/v1"
)

type App struct {
	Fiber *fiber.App
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f}
}

func Bootstrap(c *Container) (*App, func() error, error) {
	app := New(c)
	go c.Hub.Run()
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(c.Logger)
	app.Use(errMw.Middleware())

	logMw := middleware.NewAccessLogMiddleware(c.Logger)
	app.Use(logMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	health := handler.NewHealthHandler(c.DB, c.Cache)
	health.RegisterRoutes(app)

	v1.Register(app.Group("/api/v1"), v1.Deps{
		Config: c.Config,
		DB:     c.DB,
		Cache:  c.Cache,
		Bus:    c.Bus,
		Hub:    c.Hub,
		Logger: c.Logger,
	})
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
