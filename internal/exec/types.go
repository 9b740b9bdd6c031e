package exec

import (
	"path/filepath"
	"time"
)

// ResultSentinel separates a script's diagnostic output from its result lines
const ResultSentinel = "### RESULT ###"

// Step represents a single lookup script invocation
type Step struct {
	Interpreter string   // e.g. "bash"; empty runs Script directly
	ScriptsDir  string   // directory holding the lookup scripts
	Script      string   // script file name, e.g. "iib.sh"
	Args        []string // positional arguments passed to the script
}

// Command builds the argv for the step: interpreter, script path, arguments
func (s Step) Command() []string {
	script := s.Script
	if s.ScriptsDir != "" && !filepath.IsAbs(script) {
		script = filepath.Join(s.ScriptsDir, script)
	}

	cmd := make([]string, 0, len(s.Args)+2)
	if s.Interpreter != "" {
		cmd = append(cmd, s.Interpreter)
	}
	cmd = append(cmd, script)
	cmd = append(cmd, s.Args...)
	return cmd
}

// Result represents the outcome of running one command
type Result struct {
	// Captured holds the lines after the sentinel, in order
	Captured []string
	// SentinelSeen reports whether the sentinel line appeared at all
	SentinelSeen bool
	// Lines counts every stdout line echoed to the console
	Lines    int
	ExitCode int
	Duration time.Duration
}
