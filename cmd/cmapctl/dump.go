package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vkolb/gocomb/lib/serialize"
)

// dumpCmd re-encodes a dump file, canonicalizing it: useful to check
// that a hand-edited file round-trips, or to pretty-print one after
// another tool produced it with different formatting.
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "load a dump file and re-emit it in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		m, err := serialize.Load(f)
		if err != nil {
			return err
		}
		return serialize.Dump(m, os.Stdout)
	},
}
