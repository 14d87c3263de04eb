package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vkolb/gocomb/lib/serialize"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "load a dump file and print its Map.Stats() snapshot",
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

		s := m.Stats()
		fmt.Printf("dim:          %d\n", s.Dim)
		fmt.Printf("darts:        %d\n", s.NDarts)
		fmt.Printf("unused darts: %d\n", s.NUnusedDart)
		for typ, n := range s.Attributes {
			fmt.Printf("attribute %s: %d\n", typ, n)
		}
		return nil
	},
}
