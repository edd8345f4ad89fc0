// Package targets decides which files a style run checks and how their
// paths are shown.
package targets

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openkraft/spackstyle/internal/domain"
)

// Resolve returns the root-relative files to check. Explicit paths win and
// are used exactly as given, resolved against cwd and re-rooted under
// paths.Prefix; otherwise the changed set is used.
func Resolve(paths domain.Paths, cwd string, explicit []string, changed domain.ChangeSet) []string {
	if len(explicit) == 0 {
		return dedupe(changed)
	}

	files := make([]string, 0, len(explicit))
	for _, p := range explicit {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, abs)
		}
		files = append(files, paths.Rel(filepath.Clean(abs)))
	}
	return dedupe(files)
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Formatter shortens paths for display, either relative to the repository
// root or relative to the current working directory.
type Formatter struct {
	Paths        domain.Paths
	Cwd          string
	RootRelative bool
}

// Display returns the display form of a root-relative or absolute path.
func (f Formatter) Display(p string) string {
	abs := f.Paths.Abs(p)
	if f.RootRelative {
		return f.Paths.Rel(abs)
	}
	rel, err := filepath.Rel(f.Cwd, abs)
	if err != nil {
		return abs
	}
	return rel
}

// RewriteOutput rewrites every path captured by submatch 1 of the patterns
// into its display form. Root-relative output is returned unchanged since
// tools already run from the root.
func (f Formatter) RewriteOutput(text string, patterns []*regexp.Regexp) string {
	if f.RootRelative || text == "" {
		return text
	}
	for _, re := range patterns {
		text = rewrite(text, re, f.Display)
	}
	return text
}

func rewrite(text string, re *regexp.Regexp, display func(string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if len(m) < 4 || m[2] < 0 {
			continue
		}
		b.WriteString(text[last:m[2]])
		b.WriteString(display(text[m[2]:m[3]]))
		last = m[3]
	}
	b.WriteString(text[last:])
	return b.String()
}
