package domain

import (
	"path/filepath"
	"strings"
)

// Repository-relative locations of the Spack layout.
const (
	BinScriptRel    = "bin/spack"
	ModulePathRel   = "lib/spack/spack"
	LLNLPathRel     = "lib/spack/llnl"
	ExternalPathRel = "lib/spack/external"
	LibPathRel      = "lib/spack"
)

// Paths is the explicit path configuration of one repository root. It is
// built once per invocation and handed to every component, so an external
// root is just a different Paths value.
type Paths struct {
	Prefix       string `json:"prefix"`
	BinScript    string `json:"bin_script"`
	LibPath      string `json:"lib_path"`
	ModulePath   string `json:"module_path"`
	LLNLPath     string `json:"llnl_path"`
	ExternalPath string `json:"external_path"`
}

// NewPaths builds the Paths for the repository rooted at root.
func NewPaths(root string) Paths {
	prefix := filepath.Clean(root)
	return Paths{
		Prefix:       prefix,
		BinScript:    filepath.Join(prefix, filepath.FromSlash(BinScriptRel)),
		LibPath:      filepath.Join(prefix, filepath.FromSlash(LibPathRel)),
		ModulePath:   filepath.Join(prefix, filepath.FromSlash(ModulePathRel)),
		LLNLPath:     filepath.Join(prefix, filepath.FromSlash(LLNLPathRel)),
		ExternalPath: filepath.Join(prefix, filepath.FromSlash(ExternalPathRel)),
	}
}

// Abs converts a root-relative, slash-separated path to an absolute one.
func (p Paths) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.Prefix, filepath.FromSlash(rel))
}

// Rel converts an absolute path to its root-relative, slash-separated form.
// Paths outside the root keep their absolute form.
func (p Paths) Rel(abs string) string {
	rel, err := filepath.Rel(p.Prefix, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(abs))
	}
	return filepath.ToSlash(rel)
}

// IsExternal reports whether the root-relative path lies in the vendored
// external subtree.
func (p Paths) IsExternal(rel string) bool {
	return IsUnder(rel, ExternalPathRel)
}

// IsUnder reports whether the slash-separated rel equals dir or lies below it.
func IsUnder(rel, dir string) bool {
	dir = strings.TrimSuffix(dir, "/")
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}
