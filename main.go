// Package main provides the entry point for the Battlefield 6 settings manager.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Recol/bf6-settings-manager/internal/commands"
	"github.com/Recol/bf6-settings-manager/internal/container"
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/types"
	"github.com/Recol/bf6-settings-manager/internal/utils"
	"github.com/Recol/bf6-settings-manager/internal/version"
)

func main() {
	if err := run(); err != nil {
		logrus.Error(err)
		os.Exit(apperrors.ExitCodeOf(err))
	}
}

func run() error {
	// A first interrupt cancels the command context so in-flight waits stop
	// cleanly; a second interrupt kills the process the default way.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the dependency injection container
	c, err := container.BuildContainer()
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	// Initialize global logger
	if err := c.Invoke(func(configManager types.ConfigManager) {
		utils.SetupLogger(configManager)
	}); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}
	defer utils.CloseLogger()

	logrus.Debugf("bf6-settings-manager v%s starting", version.Version)
	return commands.Execute(ctx, c)
}
