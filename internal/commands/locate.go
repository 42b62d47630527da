package commands

import (
	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/locator"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// --- locate ---

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show or pin the profile file location",
	Long: `Show where the profile file resolves to.

A pinned path survives restarts and wins over the automatic scan of the
Documents folder. Pinning validates that the file exists and parses.

Examples:
  bf6-settings-manager locate
  bf6-settings-manager locate --set "D:\Games\Battlefield 6\settings\PROFSAVE_profile"
  bf6-settings-manager locate --clear`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setPath, _ := cmd.Flags().GetString("set")
		clearPath, _ := cmd.Flags().GetBool("clear")

		return withApp(func(resolver *locator.Resolver, prefsStore *prefs.Store, store *profile.Store) error {
			switch {
			case setPath != "":
				if _, err := store.Load(setPath); err != nil {
					return err
				}
				if err := prefsStore.SetCustomConfigPath(setPath); err != nil {
					return err
				}
				printSuccess("Profile path pinned to %s", setPath)
				return nil
			case clearPath:
				if err := prefsStore.ClearCustomConfigPath(); err != nil {
					return err
				}
				printSuccess("Profile path pin cleared")
				return nil
			}

			path, err := resolver.Resolve(prefsStore.CustomConfigPath())
			if err != nil {
				printStatus("Search root", "%s", resolver.ScanRoot())
				return err
			}
			printStatus("Profile", "%s", path)
			if prefsStore.CustomConfigPath() != "" {
				printStatus("Pinned", "yes")
			}
			return nil
		})
	},
}

func init() {
	locateCmd.Flags().String("set", "", "pin the profile to this path for future runs")
	locateCmd.Flags().Bool("clear", false, "remove the pinned profile path")
}
