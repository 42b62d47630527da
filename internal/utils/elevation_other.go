//go:build !windows

package utils

// IsElevated reports whether the current process runs with administrator
// privileges. Elevation is a Windows concept here; other platforms report
// false.
func IsElevated() bool {
	return false
}
