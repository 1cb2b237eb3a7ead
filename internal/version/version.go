// Package version provides build version information.
package version

import "fmt"

// Overridden at build time via -ldflags
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the full version line
func String() string {
	return fmt.Sprintf("gosnes %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
