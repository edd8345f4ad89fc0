// Package layout recognises directory trees laid out like a Spack checkout.
package layout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/spackstyle/internal/domain"
)

// Detector implements domain.LayoutDetector by looking for marker files.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// IsRoot reports whether dir holds bin/spack and a lib/spack/spack package
// directory.
func (d *Detector) IsRoot(dir string) bool {
	paths := domain.NewPaths(dir)

	script, err := os.Stat(paths.BinScript)
	if err != nil || script.IsDir() {
		return false
	}
	module, err := os.Stat(paths.ModulePath)
	return err == nil && module.IsDir()
}

// FindRoot walks up from start to the first directory that IsRoot.
func (d *Detector) FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if d.IsRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &domain.UsageError{Msg: fmt.Sprintf("%s is not inside a spack repository (no bin/spack and lib/spack/spack found)", start)}
		}
		dir = parent
	}
}
