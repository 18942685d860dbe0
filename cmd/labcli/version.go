package main

import (
	"fmt"

	"LTSLab/internal/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of labcli",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "labcli %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
