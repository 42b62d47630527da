//go:build windows

package guard

import (
	"errors"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

// scanProcesses walks a Toolhelp32 snapshot, falling back to WMI when the
// snapshot cannot be taken.
func scanProcesses() ([]Process, error) {
	procs, err := snapshotProcesses()
	if err == nil {
		return procs, nil
	}
	logrus.Debugf("Toolhelp32 snapshot failed (%v), falling back to WMI", err)
	return wmiProcesses()
}

func snapshotProcesses() ([]Process, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Process32First(snapshot, &entry); err != nil {
		return nil, err
	}

	var procs []Process
	for {
		procs = append(procs, Process{
			PID:  entry.ProcessID,
			Name: windows.UTF16ToString(entry.ExeFile[:]),
		})
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			if errors.Is(err, windows.ERROR_NO_MORE_FILES) {
				break
			}
			return nil, err
		}
	}
	return procs, nil
}
