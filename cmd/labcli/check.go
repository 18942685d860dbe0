package main

import (
	"LTSLab/internal/calc/check"

	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check MODULE [NAME=VALUE [UNIT]]...",
	Short: "Check an analysis against the configured ranges",
	Long: `Check measured values of a module against its configured ranges.
Parameters that are not given are reported as N/A.

Examples:
  labcli check MEG pH=7.1 Concentration=78 "Chlorides=250 mg/L"
  labcli check "Demineralized Water" Conductivity=0.8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the lines as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, _, evaluator, err := loadServices()
	if err != nil {
		return err
	}
	ms, err := parseAll(args[1:], parseMeasurement)
	if err != nil {
		return err
	}
	lines, err := evaluator.Evaluate(args[0], ms)
	if err != nil {
		return err
	}
	if checkJSON {
		if err := printJSON(cmd.OutOrStdout(), lines); err != nil {
			return err
		}
	} else {
		printLines(cmd.OutOrStdout(), lines)
	}
	if !check.AllCompliant(lines) {
		return errNonCompliant
	}
	return nil
}
