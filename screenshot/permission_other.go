//go:build !darwin

package screenshot

// HasPermission reports whether the process may record the screen.
// Only macOS gates screen capture behind a permission.
func HasPermission() bool {
	return true
}

// RequestPermission is a no-op outside macOS.
func RequestPermission() {}
