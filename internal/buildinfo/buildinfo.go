package buildinfo

import "fmt"

// Version, Commit and Date are set at build time via -ldflags, e.g.
//
//	-ldflags "-X xmas/internal/buildinfo.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns a compact build identifier for the window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns the full build description used in the startup log line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Short(), Commit, Date)
}
