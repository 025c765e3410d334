// Package version records build-time version information, injected through
// -ldflags at release time.
package version

import "fmt"

// Populated via -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the full version line.
func String() string {
	return fmt.Sprintf("walletbridge %s (commit %s, built %s)", Version, Commit, Date)
}
