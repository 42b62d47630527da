package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/catalog"
)

// --- catalog ---

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the supported settings",
	Long: `List every setting this tool can change, with the name accepted by
apply --setting, the profile key it maps to, and its competitive value.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-24s %-42s %-6s %-12s %-12s %s\n",
			"NAME", "PROFILE KEY", "TYPE", "CATEGORY", "COMPETITIVE", "DESCRIPTION")
		for _, entry := range catalog.Entries() {
			competitive := entry.Competitive.String()
			if entry.Category == catalog.CategoryDisplay {
				competitive = "per display"
			}
			fmt.Printf("%-24s %-42s %-6s %-12s %-12s %s\n",
				entry.ID, entry.ConfigKey, entry.Kind, entry.Category, competitive, entry.Description)
		}
	},
}
