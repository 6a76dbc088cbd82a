package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"albumbot/config"
	"albumbot/model"
	"albumbot/store"
)

// recordLine formats one ledger record for terminal output.
func recordLine(rec *model.Record) string {
	return fmt.Sprintf("  #%d %s - %s (%s)", rec.Tag, rec.Data.ArtistName, rec.Data.Title, rec.Year)
}

// ledgerCmd prints what is in the ledger file, per user.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show ledger statistics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		st, err := store.Open(cfg.LedgerPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open ledger: %v\n", err)
			os.Exit(1)
		}

		ledger := st.Snapshot()
		total := 0
		for userID, records := range ledger {
			fmt.Printf("user %s: %d record(s)\n", userID, len(records))
			for _, rec := range records {
				fmt.Println(recordLine(rec))
			}
			total += len(records)
		}
		fmt.Printf("%d user(s), %d record(s), file %s\n", len(ledger), total, st.Path())
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
}
