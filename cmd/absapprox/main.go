// absapprox runs analysis-by-synthesis phase transition experiments and
// renders their success maps.
//
// Subcommands:
//   - run: sequential experiment
//   - run-parallel: grid points solved on a worker pool
//   - plot: re-render images from a saved record
package main

import (
	"os"

	"github.com/setanarut/absynth/cmd/absapprox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
