//go:build !windows

package display

import (
	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
)

// Probe reads EDID data from the OS display enumeration. Only the Windows
// registry exposes it; elsewhere detection is always unavailable.
type Probe struct{}

// NewProbe creates a display probe.
func NewProbe() *Probe {
	return &Probe{}
}

// DetectPeakBrightnessNits always reports a typed display-unavailable error
// on this platform; the caller falls back to manual input.
func (p *Probe) DetectPeakBrightnessNits() (float64, error) {
	return 0, apperrors.NewAppError(apperrors.ErrDisplayUnavailable, "display probing requires Windows")
}
