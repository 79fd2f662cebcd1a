// Package version carries build metadata stamped in via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version or git describe result.
	Version = "dev"
	// GitCommit is the short git commit hash for this build.
	GitCommit = "unknown"
	// BuildDate is the RFC3339 timestamp when the binary was built.
	BuildDate = "unknown"
)

// String returns the one-line summary printed by `hwobserve version`.
func String() string {
	return fmt.Sprintf("hwobserve %s (commit %s, built %s, %s)", Version, GitCommit, BuildDate, runtime.Version())
}
