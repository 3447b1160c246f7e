package buildinfo

import "fmt"

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'relaybot/core/buildinfo.Version=v1.2.3'
//	-X 'relaybot/core/buildinfo.Commit=abcdef0'
//	-X 'relaybot/core/buildinfo.Date=2026-08-30T12:00:00Z'
//
// Default values are useful for local dev.
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String formats the build info for a version banner.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
