// Command cmapctl is a small harness around lib/cmap and lib/serialize:
// build empty maps, round-trip the textual dump format, print size
// stats, and run the parallel vertex-relaxation benchmark scenario.
// It is plumbing around the core, not a meshing kernel: grid
// generators, mesh loaders and the renderer stay external collaborators.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	viper.SetEnvPrefix("cmapctl")
	viper.AutomaticEnv()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
