//go:build windows

package utils

import "golang.org/x/sys/windows"

// IsElevated reports whether the current process runs with administrator
// privileges. Toggling the read-only attribute on files under another
// user's profile may fail without elevation.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
