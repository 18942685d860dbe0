package main

import (
	"os"

	"LTSLab/internal/calc/gas"
	"LTSLab/internal/calc/importer"

	"github.com/ansel1/merry"
	"github.com/spf13/cobra"
)

var (
	gasEntries  []string
	gasNoHeader bool
	gasJSON     bool
)

var gasCmd = &cobra.Command{
	Use:   "gas [FILE]",
	Short: "Compute energy parameters of a natural gas composition",
	Long: `Compute HHV, LHV, relative density, molecular weight and Wobbe index
from a composition in mol %.

The composition is read from an .xlsx or .csv file (first column label,
second column percent) or given with repeated --entry flags.

Examples:
  labcli gas cromatografia.xlsx
  labcli gas --no-header sample.csv
  labcli gas -e Methane=95 -e Ethane=3 -e Propane=1 -e N2=1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGas,
}

func init() {
	rootCmd.AddCommand(gasCmd)

	gasCmd.Flags().StringArrayVarP(&gasEntries, "entry", "e", nil, "Component as LABEL=PERCENT (repeatable)")
	gasCmd.Flags().BoolVar(&gasNoHeader, "no-header", false, "The file has no header row")
	gasCmd.Flags().BoolVar(&gasJSON, "json", false, "Print the full report as JSON")
}

func readEntries(args []string) ([]gas.Entry, error) {
	if len(args) == 0 {
		if len(gasEntries) == 0 {
			return nil, merry.New("give a composition file or at least one --entry")
		}
		return parseAll(gasEntries, parseEntry)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, merry.Wrap(err)
	}
	defer f.Close()
	rows, err := importer.ReadTable(args[0], f)
	if err != nil {
		return nil, err
	}
	return gas.ParseRows(rows, !gasNoHeader)
}

func runGas(cmd *cobra.Command, args []string) error {
	_, svc, _, err := loadServices()
	if err != nil {
		return err
	}
	entries, err := readEntries(args)
	if err != nil {
		return err
	}
	rep, err := svc.Run(entries)
	if err != nil {
		return err
	}
	if gasJSON {
		return printJSON(cmd.OutOrStdout(), rep)
	}
	printGasReport(cmd.OutOrStdout(), rep)
	return nil
}
