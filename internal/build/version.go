// Package build carries the version identity stamped into the binary
// at link time, so every emitted report can be traced to the exact
// converter build that produced it.
package build

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Stamp is the long form shown by the CLI version flag.
func Stamp() string {
	return FullVersion() + " (built " + BuildTime + ")"
}
