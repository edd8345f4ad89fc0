// Package workdir changes the process working directory for the duration of
// a function.
package workdir

import (
	"fmt"
	"os"
	"sync"
)

// The working directory is process-wide.
var mu sync.Mutex

// Within runs fn with dir as the working directory and restores the previous
// one on every exit path, including panics. Calls must not nest.
func Within(dir string, fn func() error) (err error) {
	mu.Lock()
	defer mu.Unlock()

	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("changing to %s: %w", dir, err)
	}
	defer func() {
		if cdErr := os.Chdir(prev); cdErr != nil && err == nil {
			err = fmt.Errorf("restoring working directory %s: %w", prev, cdErr)
		}
	}()

	return fn()
}
