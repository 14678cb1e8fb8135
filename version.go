package promptmeta

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the semantic version of the promptmeta library.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.1.0")
	Version string `json:"version" yaml:"version"`
	// GitCommit is the commit the binary was built from
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	// BuildTime is the build or commit timestamp
	BuildTime string `json:"build_time" yaml:"build_time"`
	// GoVersion is the Go version used to build
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// String renders the info on one line, as promptdump version prints it
// when asked for plain output.
func (v VersionInfo) String() string {
	return fmt.Sprintf("promptmeta %s (commit %s, built %s, %s)", v.Version, v.GitCommit, v.BuildTime, v.GoVersion)
}

// GetVersionInfo returns detailed version information.
//
// GitCommit and BuildTime come from -ldflags when set:
//
//	go build -ldflags="-X github.com/simonhull/promptmeta.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/promptmeta.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/promptdump
//
// Otherwise they fall back to the VCS stamp the go command embeds in the
// binary, and to "unknown" when there is none (go run, tests).
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == unknown {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == unknown {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

const unknown = "unknown"

// Variables populated at build time via -ldflags.
var (
	gitCommit = unknown
	buildTime = unknown
)
