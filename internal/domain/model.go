package domain

// ChangeQuery selects which files the change detector reports.
type ChangeQuery struct {
	Base      string `json:"base"`
	AllFiles  bool   `json:"all_files"`
	Untracked bool   `json:"untracked"`
}

// ChangeSet is an ordered, deduplicated list of root-relative paths.
type ChangeSet []string

// ToolStatus is the normalised outcome of one tool run.
type ToolStatus string

const (
	ToolPassed  ToolStatus = "passed"
	ToolFailed  ToolStatus = "failed"
	ToolSkipped ToolStatus = "skipped"
)

// Finding is a single location reported by a tool.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// ToolResult is what one tool produced during an invocation.
type ToolResult struct {
	Tool     string     `json:"tool"`
	Status   ToolStatus `json:"status"`
	ExitCode int        `json:"exit_code"`
	Output   string     `json:"output,omitempty"`
	Findings []Finding  `json:"findings,omitempty"`
	Note     string     `json:"note,omitempty"`
}

// Succeeded is true for passed and skipped tools. A skip is neutral.
func (r ToolResult) Succeeded() bool {
	return r.Status != ToolFailed
}

// Stage names the step of an invocation a report reached.
type Stage string

const (
	StageResolveTargets Stage = "resolve_targets"
	StageRunTools       Stage = "run_tools"
	StageAggregate      Stage = "aggregate"
	StageReport         Stage = "report"
)

// StyleReport aggregates one ToolResult per enabled tool.
type StyleReport struct {
	Root     string       `json:"root"`
	Targets  []string     `json:"targets"`
	Selected []string     `json:"selected"`
	Results  []ToolResult `json:"results"`
	Stage    Stage        `json:"stage"`
	Fix      bool         `json:"fix,omitempty"`
}

// Succeeded reports whether every tool result succeeded.
func (r *StyleReport) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Succeeded() {
			return false
		}
	}
	return true
}

// ExitCode is 0 on full success and 1 otherwise.
func (r *StyleReport) ExitCode() int {
	if r.Succeeded() {
		return 0
	}
	return 1
}

// Result returns the result recorded for the named tool.
func (r *StyleReport) Result(tool string) (ToolResult, bool) {
	for _, res := range r.Results {
		if res.Tool == tool {
			return res, true
		}
	}
	return ToolResult{}, false
}

// Failed lists the names of tools that reported errors.
func (r *StyleReport) Failed() []string {
	var names []string
	for _, res := range r.Results {
		if res.Status == ToolFailed {
			names = append(names, res.Tool)
		}
	}
	return names
}
