//go:build windows

package display

import (
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows/registry"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
)

const displayEnumRoot = `SYSTEM\CurrentControlSet\Enum\DISPLAY`

// Probe reads EDID data from the Windows display enumeration.
type Probe struct{}

// NewProbe creates a display probe.
func NewProbe() *Probe {
	return &Probe{}
}

// DetectPeakBrightnessNits returns the peak luminance of the first
// enumerated display that reports HDR static metadata. Keys are visited in
// sorted order so the result is stable for a fixed hardware state. Every
// failure mode maps to a typed display-unavailable error; the caller falls
// back to manual input.
func (p *Probe) DetectPeakBrightnessNits() (float64, error) {
	root, err := registry.OpenKey(registry.LOCAL_MACHINE, displayEnumRoot, registry.READ)
	if err != nil {
		return 0, apperrors.NewAppErrorf(apperrors.ErrDisplayUnavailable, "cannot open display enumeration: %v", err)
	}
	defer root.Close()

	monitors, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return 0, apperrors.NewAppErrorf(apperrors.ErrDisplayUnavailable, "cannot list displays: %v", err)
	}
	sort.Strings(monitors)

	for _, monitor := range monitors {
		monitorKey, err := registry.OpenKey(root, monitor, registry.READ)
		if err != nil {
			continue
		}
		instances, err := monitorKey.ReadSubKeyNames(-1)
		monitorKey.Close()
		if err != nil {
			continue
		}
		sort.Strings(instances)

		for _, instance := range instances {
			edidKey, err := registry.OpenKey(root, monitor+`\`+instance+`\Device Parameters`, registry.READ)
			if err != nil {
				continue
			}
			edid, _, err := edidKey.GetBinaryValue("EDID")
			edidKey.Close()
			if err != nil {
				continue
			}
			if nits, ok := PeakLuminanceNits(edid); ok {
				logrus.Debugf("Display %s\\%s reports %.0f nits peak luminance", monitor, instance, nits)
				return nits, nil
			}
		}
	}
	return 0, apperrors.NewAppError(apperrors.ErrDisplayUnavailable, "no connected display reports HDR peak luminance")
}
