// Package app provides the main application logic and lifecycle management.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/dig"
	"gorm.io/gorm"

	"github.com/Recol/bf6-settings-manager/internal/db"
	"github.com/Recol/bf6-settings-manager/internal/history"
	"github.com/Recol/bf6-settings-manager/internal/models"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/types"
	"github.com/Recol/bf6-settings-manager/internal/utils"
)

// App holds the long-lived services and manages the application lifecycle.
type App struct {
	configManager  types.ConfigManager
	prefsStore     *prefs.Store
	historyService *history.Service
	db             *gorm.DB
}

// AppParams defines the dependencies for the App.
type AppParams struct {
	dig.In
	ConfigManager  types.ConfigManager
	PrefsStore     *prefs.Store
	HistoryService *history.Service
	DB             *gorm.DB
}

// NewApp is the constructor for App, with dependencies injected by dig.
func NewApp(params AppParams) *App {
	return &App{
		configManager:  params.ConfigManager,
		prefsStore:     params.PrefsStore,
		historyService: params.HistoryService,
		db:             params.DB,
	}
}

// Start prepares the ledger and preferences and launches the background
// services. It is a non-blocking call.
func (a *App) Start() error {
	if err := a.db.AutoMigrate(&models.ApplyRecord{}); err != nil {
		return fmt.Errorf("database auto-migration failed: %w", err)
	}
	logrus.Debug("Database auto-migration completed.")

	if err := a.prefsStore.Load(); err != nil {
		return fmt.Errorf("failed to load preferences from %s: %w", a.prefsStore.Path(), err)
	}

	if runtime.GOOS == "windows" && !utils.IsElevated() {
		logrus.Warn("Not running as administrator; toggling read-only protection on the profile may fail.")
	}

	a.historyService.Start()
	return nil
}

// Stop gracefully shuts down the background services and closes the
// database.
func (a *App) Stop(ctx context.Context) {
	stoppableServices := []func(context.Context){
		a.historyService.Stop,
	}

	var wg sync.WaitGroup
	wg.Add(len(stoppableServices))

	for _, stopFunc := range stoppableServices {
		go func(stop func(context.Context)) {
			defer wg.Done()
			stop(ctx)
		}(stopFunc)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Debug("All background services stopped.")
	case <-ctx.Done():
		logrus.Warn("Shutdown timed out, some services may not have stopped gracefully.")
	}

	if err := db.Close(a.db); err != nil {
		logrus.Errorf("Error closing database: %v", err)
	}
	logrus.Debug("Application exited gracefully")
}
