// Package commands implements the command line interface. Every command
// resolves its dependencies from the shared container and runs inside the
// application lifecycle, so preferences are loaded and the history ledger is
// migrated before any handler executes.
package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/Recol/bf6-settings-manager/internal/app"
	"github.com/Recol/bf6-settings-manager/internal/version"
)

// shutdownTimeout bounds how long background services get to drain after a
// command handler returns.
const shutdownTimeout = 10 * time.Second

var (
	rootContainer *dig.Container
	noColor       bool
)

var rootCmd = &cobra.Command{
	Use:   "bf6-settings-manager",
	Short: "Tune Battlefield 6 profile settings from the command line",
	Long: `bf6-settings-manager edits the Battlefield 6 PROFSAVE profile in place:
it backs the file up, rewrites the requested settings while keeping every
other byte intact, and locks the file read-only so the game cannot revert
the changes on exit.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(
		applyCmd,
		statusCmd,
		locateCmd,
		detectHdrCmd,
		backupsCmd,
		historyCmd,
		catalogCmd,
		versionCmd,
	)
}

// Execute runs the CLI against an assembled dependency container.
func Execute(ctx context.Context, container *dig.Container) error {
	rootContainer = container
	return rootCmd.ExecuteContext(ctx)
}

// withApp starts the application, invokes fn with its arguments resolved
// from the container, and stops the application once fn returns.
func withApp(fn any) error {
	var application *app.App
	if err := rootContainer.Invoke(func(a *app.App) { application = a }); err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		application.Stop(ctx)
	}()
	return rootContainer.Invoke(fn)
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bf6-settings-manager %s %s/%s (%s)\n",
			version.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
