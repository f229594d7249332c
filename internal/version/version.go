package version

import (
	"strings"

	"github.com/fatih/color"
)

// Build metadata. These variables can be overridden at build time via
// -ldflags "-X tracereport/internal/version.Version=...".
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// String returns the trimmed version, or "dev" when unset.
func String() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// Colored renders the version with each numeric component highlighted.
// Suffixes such as "-dev" are left plain.
func Colored(enable bool) string {
	v := String()
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	paint := []*color.Color{majorColor, minorColor, patchColor}
	for i, c := range paint {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	return strings.Join(parts, ".") + suffix
}
