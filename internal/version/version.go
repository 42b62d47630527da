// Package version holds the application version, set at build time.
package version

// Version is overridden by the release build via
// -ldflags "-X github.com/Recol/bf6-settings-manager/internal/version.Version=...".
var Version = "1.0.0"
