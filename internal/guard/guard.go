// Package guard detects running game processes before a profile write.
package guard

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Recol/bf6-settings-manager/internal/types"
)

// Process is one running process observed by a scanner.
type Process struct {
	PID  uint32
	Name string
}

// ScanFunc enumerates running processes.
type ScanFunc func() ([]Process, error)

// Status is the outcome of one process check. Degraded means enumeration
// failed and the not-running answer is best-effort only.
type Status struct {
	Running     bool
	Degraded    bool
	MatchedName string
	PID         uint32
}

// Guard matches running processes against an executable allow-list. A scan
// failure never aborts the caller; it degrades the answer instead.
type Guard struct {
	names        []string
	scan         ScanFunc
	pollInterval time.Duration
}

// NewGuard creates a guard from the configured allow-list and poll interval.
func NewGuard(configManager types.ConfigManager) *Guard {
	cfg := configManager.GetGuardConfig()
	return &Guard{
		names:        cfg.ProcessNames,
		scan:         scanProcesses,
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
	}
}

// NewGuardWithScan creates a guard with an injected scanner; tests use this.
func NewGuardWithScan(names []string, pollInterval time.Duration, scan ScanFunc) *Guard {
	return &Guard{names: names, scan: scan, pollInterval: pollInterval}
}

// Names returns the guarded executable names.
func (g *Guard) Names() []string {
	result := make([]string, len(g.names))
	copy(result, g.names)
	return result
}

// Check reports whether a guarded process is currently running. Image names
// match case-insensitively.
func (g *Guard) Check() Status {
	procs, err := g.scan()
	if err != nil {
		logrus.Warnf("Process enumeration degraded: %v", err)
		return Status{Degraded: true}
	}
	for _, proc := range procs {
		for _, guarded := range g.names {
			if strings.EqualFold(proc.Name, guarded) {
				return Status{Running: true, MatchedName: proc.Name, PID: proc.PID}
			}
		}
	}
	return Status{}
}

// WaitForExit polls until no guarded process is running or the context is
// done, and returns the final status. A degraded scan counts as not running.
func (g *Guard) WaitForExit(ctx context.Context) (Status, error) {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		status := g.Check()
		if !status.Running {
			return status, nil
		}
		logrus.Infof("Waiting for %s (pid %d) to exit", status.MatchedName, status.PID)
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
