package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)

	str := info.String()
	assert.Contains(t, str, "expand-periods")
	assert.Contains(t, str, "Version:")
	assert.Contains(t, str, "Go Version:")
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: "2024-01-01T00:00:00Z",
		GitCommit: "abc123def456",
		GoVersion: "go1.24.0",
		Module:    "github.com/mztrk/ExpendbyPeriods",
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0\n")
	assert.Contains(t, str, "Build Date: 2024-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d\n")
	assert.Contains(t, str, "Go Version: go1.24.0")
	assert.Contains(t, str, "Module: github.com/mztrk/ExpendbyPeriods")
}

func TestBuildInfoString_DirtyAndUnknown(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: unknownValue,
		GitCommit: "abc-dirty",
		Dirty:     true,
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0 (dirty)")
	assert.Contains(t, str, "Git Commit: abc\n")
	assert.NotContains(t, str, "Build Date")
	assert.NotContains(t, str, "Module:")
}

func TestShort(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	for _, v := range []string{"dev", "v1.2.0", "v1.2.0-rc.1"} {
		Version = v
		assert.Equal(t, "expand-periods "+v, Short())
	}
}
