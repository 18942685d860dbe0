package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modulesCmd = &cobra.Command{
	Use:   "modules [MODULE]",
	Short: "List the analysis modules and their parameter ranges",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		names := cfg.ModuleNames()
		if len(args) == 1 {
			m, ok := cfg.Module(args[0])
			if !ok {
				return fmt.Errorf("unknown module %q, known: %v", args[0], names)
			}
			names = []string{m.Name}
		}
		out := cmd.OutOrStdout()
		for i, name := range names {
			m, _ := cfg.Module(name)
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "%s - %s\n", m.Name, m.Title)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, p := range m.Parameters {
				fmt.Fprintf(tw, "  %s\t%s\t%g - %g\n", p.Name, p.Unit, p.Min, p.Max)
			}
			_ = tw.Flush()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)
}
