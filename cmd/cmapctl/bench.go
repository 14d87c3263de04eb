package main

import (
	"fmt"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/vkolb/gocomb/lib/attribute"
	"github.com/vkolb/gocomb/lib/cmap"
	"github.com/vkolb/gocomb/lib/geom"
	"github.com/vkolb/gocomb/stm"
)

var (
	benchN      int
	benchRounds int
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "benchmark scenarios exercising the STM under contention",
}

var benchRelaxCmd = &cobra.Command{
	Use:   "relax",
	Short: "run the parallel vertex-relaxation scenario on an n-vertex strip",
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchN < 3 {
			return fmt.Errorf("--n must be at least 3, got %d", benchN)
		}

		m := cmap.NewMap(1)
		d := m.AddDarts(benchN)
		vtx := attribute.Register[geom.Vertex](m.Attrs, attribute.Vertex, geom.VertexLaws{})

		_ = stm.Atomically(func(tx *stm.Transaction) error {
			for i, dt := range d {
				vtx.Write(tx, attribute.Key(dt), geom.Vertex{X: float64(i), Y: 0})
			}
			return nil
		})

		start := time.Now()
		for r := 0; r < benchRounds; r++ {
			var wg conc.WaitGroup
			for i := 1; i < benchN-1; i++ {
				left, right, self := d[i-1], d[i+1], d[i]
				wg.Go(func() {
					_ = stm.Atomically(func(tx *stm.Transaction) error {
						lv, _ := vtx.Read(tx, attribute.Key(left))
						rv, _ := vtx.Read(tx, attribute.Key(right))
						vtx.Write(tx, attribute.Key(self), geom.Average(lv, rv))
						return nil
					})
				})
			}
			wg.Wait()
		}
		elapsed := time.Since(start)

		fmt.Printf("relaxed %d vertices over %d rounds in %s (%s/round)\n",
			benchN, benchRounds, elapsed, elapsed/time.Duration(benchRounds))
		return nil
	},
}

func init() {
	benchCmd.AddCommand(benchRelaxCmd)
	benchRelaxCmd.Flags().IntVar(&benchN, "n", 256, "number of vertices in the strip")
	benchRelaxCmd.Flags().IntVar(&benchRounds, "rounds", 100, "number of relaxation rounds")
}
