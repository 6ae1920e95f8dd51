// Package version holds build metadata injected via ldflags.
//
//	go build -ldflags "-X github.com/kailas-cloud/docdex/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime/debug"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the resolved build metadata.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the ldflags values, filling unset ones from the module build info
// so that `go install` binaries still report a version and VCS revision.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("docdex %s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}
