// Package version holds the application version string. It is set at build
// time via -ldflags "-X .../internal/version.Version=v1.2.3".
package version

// Version is the application version reported by the system endpoints.
var Version = "dev"
