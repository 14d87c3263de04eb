package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cmapctl",
	Short: "inspect and exercise a parallel combinatorial-map core",
	Long: fmt.Sprintf(`cmapctl (v%s)

A small CLI around the gocomb core: build empty N-maps, round-trip the
textual dump format, print size stats, and run the vertex-relaxation
benchmark scenario against the STM.`, version),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the cmapctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cmapctl v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(benchCmd)
}
