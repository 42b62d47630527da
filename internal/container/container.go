// Package container assembles the dependency injection container.
package container

import (
	"go.uber.org/dig"

	"github.com/Recol/bf6-settings-manager/internal/app"
	"github.com/Recol/bf6-settings-manager/internal/applier"
	"github.com/Recol/bf6-settings-manager/internal/config"
	"github.com/Recol/bf6-settings-manager/internal/db"
	"github.com/Recol/bf6-settings-manager/internal/display"
	"github.com/Recol/bf6-settings-manager/internal/guard"
	"github.com/Recol/bf6-settings-manager/internal/history"
	"github.com/Recol/bf6-settings-manager/internal/locator"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// BuildContainer creates the DI container with every application service
// registered. Providers are lazy; nothing is constructed until invoked.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Configuration
		config.NewManager,

		// Storage
		db.NewDB,
		prefs.NewStore,

		// Domain services
		profile.NewStore,
		locator.NewResolver,
		guard.NewGuard,
		display.NewProbe,
		history.NewService,
		func(service *history.Service) applier.Recorder { return service },
		applier.NewApplier,

		// Application lifecycle
		app.NewApp,
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}
