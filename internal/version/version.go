// Package version provides build and version information for Frostwalk.
package version

// Version is the current release version of Frostwalk.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/lhwinter/frostwalk/internal/version.Version=x.y.z"
var Version = "1.0.0"
