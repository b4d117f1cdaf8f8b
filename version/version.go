// Package version holds build information stamped in with -ldflags.
package version //nolint:revive // package name intentionally matches build-info convention

import "strings"

//nolint:gochecknoglobals //version information is set at build time
var (
	Repository = "github.com/pitabwire/multilingual"
	Version    string
	Commit     string
	Date       string
)

// String describes the build, reporting "dev" when no version was stamped.
func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}

	parts := []string{Repository, v}
	if Commit != "" {
		parts = append(parts, "commit "+Commit)
	}
	if Date != "" {
		parts = append(parts, "built "+Date)
	}
	return strings.Join(parts, " ")
}
