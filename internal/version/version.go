// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for a named binary.
func String(binary string) string {
	return fmt.Sprintf("%s %s\n  commit: %s\n  built:  %s", binary, Version, Commit, Date)
}
