// Package settings provides build metadata, per-run configuration, and
// context helpers used across the tdx CLI and library packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "tdx"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of one invocation. The CLI stores it in the command
// context; readers use FromContext.
type Run struct {
	// MinLogLevel is the zap level; -1 enables debug output.
	MinLogLevel int8
	// Source is the data source location (URL or file path).
	Source string
	// Location is the initial addressable location (deep link).
	Location    string
	Interactive bool
	NoColor     bool
}

// NewCliParams returns the defaults for a CLI invocation.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Location:    "/",
	}
}
