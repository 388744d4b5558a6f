// Package version carries build metadata for the cdetect CLI.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version; override with -ldflags.
	Version = "0.3.1"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Pretty returns Version with each numeric component coloured. Versions
// that are not plain major.minor.patch are returned unchanged.
func Pretty() string {
	major, rest, ok := strings.Cut(Version, ".")
	if !ok || major == "" {
		return Version
	}
	minor, patch, ok := strings.Cut(rest, ".")
	if !ok || minor == "" || patch == "" {
		return Version
	}
	return versionMajorColor.Sprint(major) + "." + versionMinorColor.Sprint(minor) + "." + versionPatchColor.Sprint(patch)
}
