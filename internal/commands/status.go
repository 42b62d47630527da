package commands

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Recol/bf6-settings-manager/internal/catalog"
	"github.com/Recol/bf6-settings-manager/internal/display"
	"github.com/Recol/bf6-settings-manager/internal/guard"
	"github.com/Recol/bf6-settings-manager/internal/locator"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the profile location, game state and current settings",
	Long: `Show where the profile resolves to, whether the game is running, the
display's HDR peak brightness, and the current value of every supported
setting. Values that differ from the competitive preset are marked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		return withApp(func(
			store *profile.Store,
			resolver *locator.Resolver,
			processGuard *guard.Guard,
			probe *display.Probe,
			prefsStore *prefs.Store,
		) error {
			path := configPath
			if path == "" {
				var err error
				path, err = resolver.Resolve(prefsStore.CustomConfigPath())
				if err != nil {
					printStatus("Search root", "%s", resolver.ScanRoot())
					return err
				}
			}

			var (
				gameStatus guard.Status
				readOnly   bool
				current    map[string]string
				nits       float64
				nitsErr    error
			)

			// The process scan, profile read and display probe are
			// independent, so they run concurrently.
			g, _ := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				gameStatus = processGuard.Check()
				return nil
			})
			g.Go(func() error {
				doc, err := store.Load(path)
				if err != nil {
					return err
				}
				current = profile.CurrentValues(doc, catalogKeys())
				readOnly, _ = store.IsReadOnly(path)
				return nil
			})
			g.Go(func() error {
				nits, nitsErr = probe.DetectPeakBrightnessNits()
				return nil
			})
			err := g.Wait()

			printStatus("Profile", "%s", path)
			switch {
			case gameStatus.Running:
				printWarning("%s is running (pid %d)", gameStatus.MatchedName, gameStatus.PID)
			case gameStatus.Degraded:
				printWarning("process scan degraded, game state unknown")
			default:
				printStatus("Game", "not running")
			}
			if nitsErr != nil {
				printStatus("Display", "HDR peak brightness unavailable")
			} else {
				printStatus("Display", "%s nits peak brightness", formatNits(nits))
			}
			if err != nil {
				return err
			}
			printStatus("Read-only", "%t", readOnly)

			for _, entry := range catalog.Entries() {
				raw, ok := current[entry.ConfigKey]
				switch {
				case !ok:
					printStatus(entry.ConfigKey, "absent")
				case entry.Category == catalog.CategoryDisplay:
					printStatus(entry.ConfigKey, "%s", raw)
				case matchesCompetitive(entry, raw):
					printStatus(entry.ConfigKey, "%s", raw)
				default:
					printStatus(entry.ConfigKey, "%s (competitive: %s)", raw, entry.Competitive)
				}
			}
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().String("config", "", "path to the profile file, skips auto-discovery")
}

func catalogKeys() []string {
	entries := catalog.Entries()
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.ConfigKey)
	}
	return keys
}

// matchesCompetitive reports whether a raw profile value already equals the
// entry's competitive target. Comparison happens on the parsed value, so
// "0.0" matches a target of 0.
func matchesCompetitive(entry catalog.SettingEntry, raw string) bool {
	value, err := catalog.ParseValue(entry, raw)
	if err != nil {
		return false
	}
	if entry.Kind == catalog.KindFloat {
		return value.Float() == entry.Competitive.Float()
	}
	return value.Int() == entry.Competitive.Int()
}
