// Package version holds the build version of blockrun.
package version

// Version is overridden at build time via -ldflags.
var Version = "dev"

// String returns the version string for display.
func String() string {
	return Version
}
