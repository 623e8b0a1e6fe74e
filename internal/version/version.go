package version

// Version information for cursor-context.
const (
	// Version is the current semantic version.
	Version = "0.2.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns the short version string.
func Info() string {
	return Version
}

// FullInfo returns detailed version information.
func FullInfo() string {
	return "cursor-context " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}
