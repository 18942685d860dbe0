package main

import (
	"fmt"
	"os"

	"LTSLab/internal/calc/report"
	"LTSLab/internal/notify"

	"github.com/ansel1/merry"
	"github.com/spf13/cobra"
)

var (
	reportOperator     string
	reportOutput       string
	reportTitle        string
	reportObservations string
	reportGasFile      string
	reportNotify       bool
)

var reportCmd = &cobra.Command{
	Use:   "report MODULE [NAME=VALUE [UNIT]]...",
	Short: "Issue a PDF laboratory report and record it in the history",
	Long: `Evaluate an analysis, write the PDF report and append the history record.
For the Natural Gas module the composition can be given with --gas.

Examples:
  labcli report MEG pH=7.1 Concentration=78 -u jperez -o meg.pdf
  labcli report "Natural Gas" --gas cromatografia.xlsx -u jperez`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOperator, "operator", "u", os.Getenv("USER"), "Operator signing the report")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "PDF file (default MODULE_DATE.pdf)")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Report title (default module title)")
	reportCmd.Flags().StringVar(&reportObservations, "obs", "", "Observations")
	reportCmd.Flags().StringVar(&reportGasFile, "gas", "", "Composition file for the Natural Gas module")
	reportCmd.Flags().BoolVar(&reportNotify, "notify", false, "Send the Telegram alert when non-compliant")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportOperator == "" {
		return merry.New("--operator is required")
	}
	cfg, svc, evaluator, err := loadServices()
	if err != nil {
		return err
	}
	ms, err := parseAll(args[1:], parseMeasurement)
	if err != nil {
		return err
	}
	input := report.Input{
		Module:       args[0],
		Title:        reportTitle,
		Measurements: ms,
		Observations: reportObservations,
	}
	if reportGasFile != "" {
		if input.Entries, err = readEntries([]string{reportGasFile}); err != nil {
			return err
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if reportNotify {
		if notifier, err = notify.FromEnv(os.Getenv("TOKEN_BOT"), os.Getenv("ADMIN_PEER_ID")); err != nil {
			return err
		}
	}
	history, closeDB, err := openHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	h := &report.Handler{Config: cfg, Evaluator: evaluator, Gas: svc, Repo: history, Notifier: notifier}
	lab, err := h.Build(reportOperator, input)
	if err != nil {
		return err
	}
	b, err := h.Issue(cmd.Context(), lab)
	if err != nil {
		return err
	}
	out := reportOutput
	if out == "" {
		out = report.FileName(lab)
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		return merry.Wrap(err)
	}
	printLines(cmd.OutOrStdout(), lab.Lines)
	fmt.Fprintf(cmd.OutOrStdout(), "\nreport %s written to %s\n", lab.ID, out)
	return nil
}
