// Package version carries the build version, set at link time with
// -ldflags "-X .../internal/version.Version=v1.2.3".
package version

// Version is the running build's version string.
var Version = "dev"
