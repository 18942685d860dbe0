package main

import (
	"fmt"
	"text/tabwriter"

	"LTSLab/internal/repo"

	"github.com/spf13/cobra"
)

var (
	historyModule string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List issued reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := repo.HistoryFilter{Limit: historyLimit}
		if historyModule != "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, ok := cfg.Module(historyModule)
			if !ok {
				return fmt.Errorf("unknown module %q", historyModule)
			}
			f.Module = m.Name
		}
		r, closeDB, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		xs, err := r.ListHistory(cmd.Context(), f)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tOPERATOR\tMODULE\tREPORT")
		for _, h := range xs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.Time.Local().Format("2006-01-02 15:04"), h.Operator, h.Module, h.ReportID)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVarP(&historyModule, "module", "m", "", "Only this module")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", repo.DefaultHistoryLimit, "Number of records")
}
