package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vkolb/gocomb/lib/cmap"
	"github.com/vkolb/gocomb/lib/serialize"
)

var (
	newDim   uint8
	newDarts int
	newOut   string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "build an empty N-map with n unlinked darts and dump it",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := cmap.NewMap(newDim)
		m.AddDarts(newDarts)

		out := os.Stdout
		if newOut != "" {
			f, err := os.Create(newOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := serialize.Dump(m, out); err != nil {
			return err
		}
		if newOut != "" {
			fmt.Fprintf(os.Stderr, "wrote %s: dim=%d darts=%d\n", newOut, newDim, newDarts)
		}
		return nil
	},
}

func init() {
	newCmd.Flags().Uint8Var(&newDim, "dim", 2, "map dimension (beta ranges over 0..dim)")
	newCmd.Flags().IntVar(&newDarts, "darts", 0, "number of darts to pre-allocate")
	newCmd.Flags().StringVarP(&newOut, "out", "o", "", "output file (default: stdout)")
}
