package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLines(w io.Writer, lines []check.Line) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tVALUE\tUNIT\tRANGE\tVERDICT")
	for _, l := range lines {
		value := "-"
		if l.Value != nil {
			value = strconv.FormatFloat(*l.Value, 'f', -1, 64)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g - %g\t%s\n", l.Name, value, l.Unit, l.Min, l.Max, l.Verdict.Label())
	}
	_ = tw.Flush()
	s := check.Summarize(lines)
	fmt.Fprintf(w, "\ncompliant %d, non-compliant %d, n/a %d\n", s.Compliant, s.NonCompliant, s.NotApplicable)
}

func printGasReport(w io.Writer, rep gas.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tMOL %")
	for _, sym := range rep.Composition.SortedSymbols() {
		fmt.Fprintf(tw, "%s\t%.4f\n", sym, rep.Composition.Fractions[sym]*100)
	}
	fmt.Fprintf(tw, "total\t%.2f\n", rep.Composition.TotalPercent)
	_ = tw.Flush()
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tVALUE\tUNIT\tFORMULA")
	for _, f := range rep.Fields {
		fmt.Fprintf(tw, "%s\t%.*f\t%s\t%s\n", f.Label, f.Decimals, f.Value, f.Unit, f.Formula)
	}
	_ = tw.Flush()

	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if len(rep.Lines) > 0 {
		fmt.Fprintln(w)
		printLines(w, rep.Lines)
	}
}
