package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set by ldflags during build)
	Version = "dev"
	// Commit is the git commit hash (set by ldflags during build)
	Commit = "unknown"
	// Date is the build date (set by ldflags during build)
	Date = "unknown"
)

// Info contains complete version information
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`

	// Setup describes the lookup scripts this build would run; empty until WithSetup
	Setup *Setup `json:"setup,omitempty"`
}

// Setup is the script and remap configuration in effect
type Setup struct {
	ScriptsDir     string `json:"scripts_dir"`
	Interpreter    string `json:"interpreter"`
	DigestBackend  string `json:"digest_backend"`
	RemapThreshold string `json:"remap_threshold,omitempty"` // empty when remapping is off
}

// WithSetup returns a copy of i describing setup
func (i Info) WithSetup(setup Setup) Info {
	i.Setup = &setup
	return i
}

// GetInfo returns complete version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	commitShort := i.Commit
	if len(commitShort) > 8 {
		commitShort = commitShort[:8]
	}
	s := fmt.Sprintf("Releng %s (%s) built %s with %s for %s",
		i.Version, commitShort, i.Date, i.GoVersion, i.Platform)
	if i.Setup == nil {
		return s
	}

	remap := "off"
	if i.Setup.RemapThreshold != "" {
		remap = "from " + i.Setup.RemapThreshold
	}
	return fmt.Sprintf("%s\nscripts: %s (run with %s), digest backend: %s, remap: %s",
		s, i.Setup.ScriptsDir, i.Setup.Interpreter, i.Setup.DigestBackend, remap)
}

// Short returns just the version number
func (i Info) Short() string {
	return i.Version
}
