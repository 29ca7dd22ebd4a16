package main

import (
	"fmt"

	"lotsweep/internal/config"
	"lotsweep/internal/flow"
	"lotsweep/internal/marketplace"
	"lotsweep/internal/selection"
	"lotsweep/internal/session"
	"lotsweep/internal/sweep"
)

// app bundles the wired components behind the commands.
type app struct {
	settings   *config.Settings
	client     marketplace.Client
	store      *session.Store
	controller *selection.Controller
	executor   *sweep.Executor
	router     *flow.Router
}

// initApp loads settings and wires the session store, controller, executor,
// and router. Components are constructed explicitly and threaded through; no
// package-level state.
func initApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	client, err := marketplace.NewHTTPClient(settings.Marketplace.BaseURL, settings.Marketplace.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create marketplace client: %w", err)
	}

	store := session.NewStore(settings.Session.TTL, settings.Session.CleanupInterval)
	controller := selection.NewController(store)
	executor := sweep.New(store, client, settings.Sweep)
	router := flow.NewRouter(store, controller, executor, client)

	return &app{
		settings:   settings,
		client:     client,
		store:      store,
		controller: controller,
		executor:   executor,
		router:     router,
	}, nil
}
