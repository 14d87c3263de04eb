package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vkolb/gocomb/lib/serialize"
)

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "load a dump file and report success or the validation errors found",
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
		fmt.Printf("ok: dim=%d darts=%d\n", m.Dim(), m.NDarts()-1)
		return nil
	},
}
