package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aleister1102/odiffkit/internal/datastore"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	db    string
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent diff invocations",
	Long:  `List diff invocations recorded in storage_config.history_db_path, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlags.db, "db", "", "History database (overrides storage_config.history_db_path)")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum number of entries, 0 for all")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	path := cfg.StorageConfig.HistoryDBPath
	if cmd.Flags().Changed("db") {
		path = historyFlags.db
	}
	if path == "" {
		return fmt.Errorf("diff history is disabled: set storage_config.history_db_path or --db")
	}

	store, err := datastore.NewHistoryStore(path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	invocations, err := store.ListRecent(cmd.Context(), historyFlags.limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tCODE\tBEFORE\tAFTER\tOUTPUT\tPIXELS\tTOOK")
	for _, inv := range invocations {
		output := "-"
		if inv.OutputExists {
			output = inv.OutputPath
		}
		pixels := "-"
		if inv.Result != nil {
			pixels = fmt.Sprintf("%s (%.2f%%)", humanize.Comma(int64(inv.Result.DiffCount)), inv.Result.DiffPercentage)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(inv.CreatedAt), inv.ResultCode, inv.BeforePath, inv.AfterPath, output, pixels, inv.Duration)
	}
	return w.Flush()
}
