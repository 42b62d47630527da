package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/applier"
	"github.com/Recol/bf6-settings-manager/internal/catalog"
	"github.com/Recol/bf6-settings-manager/internal/display"
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// hdrSettingID is the catalog identifier the HDR flags resolve to.
const hdrSettingID = "hdr_peak_brightness"

// brightnessProbe is the display capability the apply command needs.
type brightnessProbe interface {
	DetectPeakBrightnessNits() (float64, error)
}

// --- apply ---

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply settings to the profile file",
	Long: `Apply settings to the profile file.

The game must be closed. The profile is backed up before anything is
rewritten, and locked read-only afterwards unless --no-lock is given.

Examples:
  bf6-settings-manager apply --preset competitive
  bf6-settings-manager apply --setting weapon_dof=0 --setting film_grain=off
  bf6-settings-manager apply --preset competitive --hdr-auto
  bf6-settings-manager apply --hdr-nits 750 --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs, _ := cmd.Flags().GetStringArray("setting")
		preset, _ := cmd.Flags().GetString("preset")
		hdrNits, _ := cmd.Flags().GetFloat64("hdr-nits")
		hdrAuto, _ := cmd.Flags().GetBool("hdr-auto")
		noLock, _ := cmd.Flags().GetBool("no-lock")
		configPath, _ := cmd.Flags().GetString("config")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		wait, _ := cmd.Flags().GetBool("wait")
		hdrNitsSet := cmd.Flags().Changed("hdr-nits")

		return withApp(func(settingsApplier *applier.Applier, probe *display.Probe, prefsStore *prefs.Store) error {
			desired, err := buildDesiredSettings(pairs, preset)
			if err != nil {
				return err
			}
			if hdrAuto || hdrNitsSet {
				nits, err := resolveHdrNits(probe, prefsStore, hdrNits, hdrNitsSet)
				if err != nil {
					return err
				}
				entry, ok := catalog.ByID(hdrSettingID)
				if !ok {
					return apperrors.NewAppErrorf(apperrors.ErrInternal, "setting %s missing from catalog", hdrSettingID)
				}
				desired[entry.ConfigKey] = catalog.FloatValue(nits)
			}
			if len(desired) == 0 {
				return apperrors.NewValidationError("nothing to apply, pass --preset, --setting, --hdr-nits or --hdr-auto")
			}

			if wait {
				printStep("Waiting for the game to exit")
			}
			result, err := settingsApplier.Apply(cmd.Context(), desired, applier.Options{
				ConfigPath: configPath,
				SkipLock:   noLock,
				DryRun:     dryRun,
				Wait:       wait,
			})
			printResult(result)
			if err != nil {
				return err
			}
			switch {
			case dryRun:
				printSuccess("Dry run complete, %d change(s) pending", len(result.Changes))
			case len(result.Changes) == 0:
				printSuccess("Profile already up to date")
			default:
				printSuccess("Applied %d change(s)", len(result.Changes))
			}
			return nil
		})
	},
}

func init() {
	applyCmd.Flags().StringArray("setting", nil, "setting as name=value, repeatable (see the catalog command for names)")
	applyCmd.Flags().String("preset", "", `apply a named preset ("competitive")`)
	applyCmd.Flags().Float64("hdr-nits", 0, "HDR peak brightness to write, in nits")
	applyCmd.Flags().Bool("hdr-auto", false, "detect HDR peak brightness from the connected display")
	applyCmd.Flags().Bool("no-lock", false, "leave the profile writable after applying")
	applyCmd.Flags().String("config", "", "path to the profile file, skips auto-discovery")
	applyCmd.Flags().Bool("dry-run", false, "show what would change without writing anything")
	applyCmd.Flags().Bool("wait", false, "wait for the game to exit instead of failing while it runs")
}

// buildDesiredSettings merges a preset with individual --setting overrides.
// Overrides win because they are applied second.
func buildDesiredSettings(pairs []string, preset string) (profile.DesiredSettings, error) {
	desired := profile.DesiredSettings{}

	switch preset {
	case "":
	case "competitive":
		for key, value := range catalog.CompetitiveDefaults() {
			desired[key] = value
		}
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown preset %q, the only preset is competitive", preset))
	}

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("setting %q is not in name=value form", pair))
		}
		entry, err := lookupEntry(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		value, err := catalog.ParseValue(entry, strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		desired[entry.ConfigKey] = value
	}
	return desired, nil
}

// lookupEntry accepts either a catalog identifier or a raw profile key.
func lookupEntry(name string) (catalog.SettingEntry, error) {
	if entry, ok := catalog.ByID(name); ok {
		return entry, nil
	}
	if entry, ok := catalog.ByConfigKey(name); ok {
		return entry, nil
	}
	return catalog.SettingEntry{}, apperrors.NewValidationError(
		fmt.Sprintf("unknown setting %q, run the catalog command for the supported names", name))
}

// resolveHdrNits picks the peak brightness to write. An explicit --hdr-nits
// wins; otherwise the connected display is probed and the result cached, so
// a later run can fall back to it when no probe is possible.
func resolveHdrNits(probe brightnessProbe, prefsStore *prefs.Store, flagNits float64, flagSet bool) (float64, error) {
	if flagSet {
		if flagNits <= 0 {
			return 0, apperrors.NewValidationError("--hdr-nits must be a positive nits value")
		}
		return flagNits, nil
	}

	nits, err := probe.DetectPeakBrightnessNits()
	if err == nil {
		if saveErr := prefsStore.SetLastKnownGoodNits(nits); saveErr != nil {
			logrus.Debugf("Could not persist detected peak brightness: %v", saveErr)
		}
		printStatus("Detected peak brightness", "%s nits", formatNits(nits))
		return nits, nil
	}
	if errors.Is(err, apperrors.ErrDisplayUnavailable) {
		if cached, ok := prefsStore.LastKnownGoodNits(); ok {
			printWarning("Display probe unavailable, using last known value of %s nits", formatNits(cached))
			return cached, nil
		}
	}
	return 0, err
}
