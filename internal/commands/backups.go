package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/applier"
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/locator"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// --- backups ---

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List and restore profile backups",
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups of the profile file, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		return withApp(func(store *profile.Store, resolver *locator.Resolver, prefsStore *prefs.Store) error {
			path, err := resolveProfilePath(configPath, resolver, prefsStore)
			if err != nil {
				return err
			}
			backups, err := store.ListBackups(path)
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				printStatus("Backups", "none for %s", path)
				return nil
			}
			for _, backup := range backups {
				printStatus(backup.CreatedAt.Format("2006-01-02 15:04:05"), "%s", backup.BackupPath)
			}
			return nil
		})
	},
}

var backupsRestoreCmd = &cobra.Command{
	Use:   "restore <backup-path|latest>",
	Short: "Restore the profile from a backup",
	Long: `Restore the profile file from a backup.

The current profile is backed up first, so a restore can itself be
undone. The game must be closed. Passing "latest" restores the newest
backup of the resolved profile.

Examples:
  bf6-settings-manager backups restore latest
  bf6-settings-manager backups restore "C:\...\PROFSAVE_profile.backup_20260101_120000"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		noLock, _ := cmd.Flags().GetBool("no-lock")
		wait, _ := cmd.Flags().GetBool("wait")

		return withApp(func(
			settingsApplier *applier.Applier,
			store *profile.Store,
			resolver *locator.Resolver,
			prefsStore *prefs.Store,
		) error {
			backupPath := args[0]
			if backupPath == "latest" {
				path, err := resolveProfilePath(configPath, resolver, prefsStore)
				if err != nil {
					return err
				}
				backups, err := store.ListBackups(path)
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					return apperrors.NewNotFoundError(fmt.Sprintf("no backups found for %s", path))
				}
				backupPath = backups[0].BackupPath
			}

			if wait {
				printStep("Waiting for the game to exit")
			}
			result, err := settingsApplier.Restore(cmd.Context(), backupPath, applier.Options{
				ConfigPath: configPath,
				SkipLock:   noLock,
				Wait:       wait,
			})
			printResult(result)
			if err != nil {
				return err
			}
			printSuccess("Restored %s", backupPath)
			return nil
		})
	},
}

func init() {
	backupsListCmd.Flags().String("config", "", "path to the profile file, skips auto-discovery")
	backupsRestoreCmd.Flags().String("config", "", "path to the profile file, skips auto-discovery")
	backupsRestoreCmd.Flags().Bool("no-lock", false, "leave the profile writable after restoring")
	backupsRestoreCmd.Flags().Bool("wait", false, "wait for the game to exit instead of failing while it runs")
	backupsCmd.AddCommand(backupsListCmd, backupsRestoreCmd)
}

// resolveProfilePath honors an explicit path before falling back to the
// pinned or scanned location.
func resolveProfilePath(configPath string, resolver *locator.Resolver, prefsStore *prefs.Store) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return resolver.Resolve(prefsStore.CustomConfigPath())
}
