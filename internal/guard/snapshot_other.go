//go:build !windows

package guard

// scanProcesses reports nothing on platforms the game does not run on.
func scanProcesses() ([]Process, error) {
	return nil, nil
}
