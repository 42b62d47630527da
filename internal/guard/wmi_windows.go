//go:build windows

package guard

import (
	"github.com/yusufpapurcu/wmi"
)

type win32Process struct {
	Name      string
	ProcessId uint32
}

func wmiProcesses() ([]Process, error) {
	var rows []win32Process
	if err := wmi.Query("SELECT Name, ProcessId FROM Win32_Process", &rows); err != nil {
		return nil, err
	}
	procs := make([]Process, 0, len(rows))
	for _, row := range rows {
		procs = append(procs, Process{PID: row.ProcessId, Name: row.Name})
	}
	return procs, nil
}
