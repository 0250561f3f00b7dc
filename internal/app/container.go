package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutorhub/internal/config"
	"tutorhub/internal/database"
	dbpostgres "tutorhub/internal/database/postgres"
	"tutorhub/internal/infrastructure/cache"
	"tutorhub/internal/realtime"
)

// Container holds the process-wide dependencies in shutdown order: the bus
// and hub stop before the stores they publish through.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	Bus    *realtime.Bus
	Hub    *realtime.Hub
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	rdb := cache.NewRedis(cfg.Redis, logger)
	bus := realtime.NewBus(rdb.Client(), logger)
	hub := realtime.NewHub(logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  rdb,
		Bus:    bus,
		Hub:    hub,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Hub != nil {
		c.Hub.Stop()
	}
	if c.Bus != nil {
		c.Bus.Close()
	}
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if c.Cache != nil {
		if cerr := c.Cache.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
