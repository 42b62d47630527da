package commands

import (
	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/display"
	"github.com/Recol/bf6-settings-manager/internal/prefs"
)

// --- detect-hdr ---

var detectHdrCmd = &cobra.Command{
	Use:   "detect-hdr",
	Short: "Detect the display's HDR peak brightness",
	Long: `Read the connected display's EDID and report its HDR peak brightness
in nits. This is the value apply --hdr-auto would write.

The profile is not touched. With --save the value is recorded so later
runs can fall back to it when no display can be probed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		save, _ := cmd.Flags().GetBool("save")

		return withApp(func(probe *display.Probe, prefsStore *prefs.Store) error {
			nits, err := probe.DetectPeakBrightnessNits()
			if err != nil {
				if cached, ok := prefsStore.LastKnownGoodNits(); ok {
					printStatus("Last known", "%s nits", formatNits(cached))
				}
				return err
			}
			printStatus("Peak brightness", "%s nits", formatNits(nits))
			if save {
				if err := prefsStore.SetLastKnownGoodNits(nits); err != nil {
					return err
				}
				printSuccess("Saved for offline use")
			}
			return nil
		})
	},
}

func init() {
	detectHdrCmd.Flags().Bool("save", false, "record the detected value for later offline use")
}
