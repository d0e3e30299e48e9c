// Command greenread builds green heightfields from traced contours and
// computes best putting lines over them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/banshee-data/greenreader/internal/greenerr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to distinct process exit codes so scripts can
// tell bad input from a missing artifact.
func exitCode(err error) int {
	switch greenerr.KindOf(err) {
	case greenerr.KindInput:
		return 2
	case greenerr.KindReconstruction:
		return 3
	case greenerr.KindResource:
		return 4
	}
	if errors.Is(err, errBuildFailed) {
		return 3
	}
	return 1
}
