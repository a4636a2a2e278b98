package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/worldwise-api/internal/domain/city"
	"github.com/FACorreiaa/worldwise-api/pkg/config"
	"github.com/FACorreiaa/worldwise-api/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// Repositories
	CityRepo city.Repository

	// Container
	Cities *city.Container

	// Handlers
	CityHandler *city.Handler
}

// InitDependencies initializes all application dependencies. reg may be nil, in which
// case metrics are collected but not exposed.
func InitDependencies(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(reg),
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	deps.initContainer()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initRepositories initializes the remote city store client
func (d *Dependencies) initRepositories() error {
	repo, err := city.NewCityRepository(city.RepositoryConfig{
		BaseURL: d.Config.Store.BaseURL,
		Timeout: d.Config.Store.Timeout,
		Metrics: d.Metrics,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.CityRepo = repo

	d.Logger.Info("repositories initialized", slog.String("store", d.Config.Store.BaseURL))
	return nil
}

// initContainer builds the city state container shared by every view
func (d *Dependencies) initContainer() {
	opts := []city.Option{city.WithMetrics(d.Metrics)}
	if d.Config.City.DiscardStaleReads {
		opts = append(opts, city.WithStaleReadGuard())
	}
	d.Cities = city.NewContainer(d.CityRepo, d.Logger, opts...)
	d.Logger.Info("city container initialized",
		slog.Bool("discard_stale_reads", d.Config.City.DiscardStaleReads))
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.CityHandler = city.NewHandler(d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup unmounts the container
func (d *Dependencies) Cleanup() {
	if d.Cities != nil {
		d.Cities.Close()
	}
	d.Logger.Info("cleanup completed")
}
