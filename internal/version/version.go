// Package version reports the CSI Monitor build
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X csi-monitor/internal/version.Version=..."
var (
	Version   = "0.1.0"
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	GitCommit string
	Modified  bool // built from a dirty tree
	BuildDate string
	GoVersion string
	Platform  string
}

// GetBuildInfo merges the ldflags values with what the Go toolchain embedded
// in the binary. Explicit ldflags win.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	return info
}

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

// GetVersionInfo returns a multi-line description for --version
func GetVersionInfo(appName string) string {
	info := GetBuildInfo()

	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s", appName, info.Version)
	if info.GitCommit != "" {
		fmt.Fprintf(&b, " (commit %s", shortCommit(info.GitCommit))
		if info.Modified {
			b.WriteString("-dirty")
		}
		b.WriteString(")")
	}
	if info.BuildDate != "" {
		fmt.Fprintf(&b, "\nBuilt: %s", info.BuildDate)
	}
	fmt.Fprintf(&b, "\nGo: %s\nPlatform: %s", info.GoVersion, info.Platform)
	return b.String()
}
