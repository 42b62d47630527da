package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Recol/bf6-settings-manager/internal/applier"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// printResult prints the paths, per-key changes and warnings of a finished
// operation. It runs for failed operations too, so a surviving backup path
// is always visible.
func printResult(result *applier.Result) {
	if result == nil {
		return
	}
	if result.ConfigPath != "" {
		printStatus("Profile", "%s", result.ConfigPath)
	}
	if result.BackupPath != "" {
		printStatus("Backup", "%s", result.BackupPath)
	}
	for _, change := range result.Changes {
		if change.Appended {
			printStatus(change.Key, "%s (added)", change.New)
			continue
		}
		printStatus(change.Key, "%s -> %s", change.Old, change.New)
	}
	for _, warning := range result.Warnings {
		printWarning("%s", warning)
	}
}

func formatNits(nits float64) string {
	return strconv.FormatFloat(nits, 'f', -1, 64)
}
