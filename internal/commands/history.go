package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Recol/bf6-settings-manager/internal/applier"
	"github.com/Recol/bf6-settings-manager/internal/history"
	"github.com/Recol/bf6-settings-manager/internal/models"
	"github.com/Recol/bf6-settings-manager/internal/profile"
)

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show past apply and restore operations",
	Long: `Show the ledger of past apply and restore operations, newest first.
Passing an operation id prints that operation in full, including the
per-key changes it made.

The ledger only records what happened; removing entries never touches
the profile or its backups.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(func(service *history.Service) error {
			if len(args) == 1 {
				record, err := service.Get(args[0])
				if err != nil {
					return err
				}
				printHistoryDetail(record)
				return nil
			}

			records, err := service.List(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printStatus("History", "empty")
				return nil
			}
			for _, record := range records {
				printHistoryLine(record)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of operations to list")
}

func printHistoryLine(record models.ApplyRecord) {
	state := record.State
	if record.FailureReason != "" {
		state += " (" + record.FailureReason + ")"
	}
	color := colorGreen
	if record.State == string(applier.StateFailed) {
		color = colorRed
	}
	fmt.Fprintf(os.Stderr, "  %s  %s  %-7s %s\n",
		record.ID,
		record.StartedAt.Local().Format("2006-01-02 15:04:05"),
		record.Operation,
		colorize(color, state))
}

func printHistoryDetail(record *models.ApplyRecord) {
	printStatus("ID", "%s", record.ID)
	printStatus("Operation", "%s", record.Operation)
	state := record.State
	if record.FailureReason != "" {
		state += " (" + record.FailureReason + ")"
	}
	printStatus("State", "%s", state)
	printStatus("Started", "%s", record.StartedAt.Local().Format("2006-01-02 15:04:05"))
	printStatus("Finished", "%s", record.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	if record.ConfigPath != "" {
		printStatus("Profile", "%s", record.ConfigPath)
	}
	if record.BackupPath != "" {
		printStatus("Backup", "%s", record.BackupPath)
	}

	var changes []profile.Change
	if len(record.Changes) > 0 && json.Unmarshal(record.Changes, &changes) == nil {
		for _, change := range changes {
			if change.Appended {
				printStatus(change.Key, "%s (added)", change.New)
				continue
			}
			printStatus(change.Key, "%s -> %s", change.Old, change.New)
		}
	}
	var warnings []string
	if len(record.Warnings) > 0 && json.Unmarshal(record.Warnings, &warnings) == nil {
		for _, warning := range warnings {
			printWarning("%s", warning)
		}
	}
}
