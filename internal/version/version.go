// Package version reports build information for the expand-periods tool.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string   `json:"version"`
	BuildDate string   `json:"build_date"`
	GitCommit string   `json:"git_commit"`
	GoVersion string   `json:"go_version"`
	Dirty     bool     `json:"dirty"`
	Module    string   `json:"module"`
	Deps      []Module `json:"deps"`
}

// Module is a dependency compiled into the binary.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info collects the ldflags values and the module's own build info. When
// ldflags did not set a commit, the VCS revision stamped by the Go
// toolchain is used.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = buildInfo.Main.Path
	for _, dep := range buildInfo.Deps {
		info.Deps = append(info.Deps, Module{Path: dep.Path, Version: dep.Version})
	}

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == unknownValue {
				info.GitCommit = setting.Value
			}
		case "vcs.modified":
			if setting.Value == "true" {
				info.Dirty = true
			}
		case "vcs.time":
			if info.BuildDate == unknownValue {
				info.BuildDate = setting.Value
			}
		}
	}

	return info
}

// String returns the multi-line text printed by -version.
func (b BuildInfo) String() string {
	var sb strings.Builder
	sb.WriteString("expand-periods\n")
	fmt.Fprintf(&sb, "Version: %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue && b.BuildDate != "" {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}

	if b.GitCommit != unknownValue && b.GitCommit != "" {
		commit := strings.TrimSuffix(b.GitCommit, "-dirty")
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		fmt.Fprintf(&sb, "Git Commit: %s\n", commit)
	}

	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)

	if b.Module != "" {
		fmt.Fprintf(&sb, "Module: %s\n", b.Module)
	}

	return sb.String()
}

// Short returns "expand-periods <version>".
func Short() string {
	return "expand-periods " + Version
}
