// Package catalog defines the fixed table of tunable game settings.
package catalog

import (
	"fmt"
	"strconv"

	"github.com/Recol/bf6-settings-manager/internal/errors"
)

// ValueKind describes how a setting value is typed and serialized.
type ValueKind int

const (
	// KindInt serializes without a decimal point.
	KindInt ValueKind = iota
	// KindFloat serializes with a decimal point.
	KindFloat
	// KindBool serializes as 0 or 1.
	KindBool
)

// String returns the kind name for display.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Category groups settings for display.
type Category string

const (
	CategoryDisplay     Category = "display"
	CategoryVisual      Category = "visual"
	CategoryPerformance Category = "performance"
	CategoryAudio       Category = "audio"
)

// Value is a typed scalar for a setting. Ints and bools share the integer
// slot; bools hold 0 or 1.
type Value struct {
	kind     ValueKind
	intVal   int64
	floatVal float64
}

// IntValue creates an integer value.
func IntValue(v int64) Value {
	return Value{kind: KindInt, intVal: v}
}

// FloatValue creates a float value.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, floatVal: v}
}

// BoolValue creates a boolean value serialized as 0 or 1.
func BoolValue(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{kind: KindBool, intVal: i}
}

// Kind returns the value kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Int returns the integer payload. For floats it truncates.
func (v Value) Int() int64 {
	if v.kind == KindFloat {
		return int64(v.floatVal)
	}
	return v.intVal
}

// Float returns the payload as a float64.
func (v Value) Float() float64 {
	if v.kind == KindFloat {
		return v.floatVal
	}
	return float64(v.intVal)
}

// String renders the value for display: ints and bools without a decimal
// point, floats in minimal form.
func (v Value) String() string {
	if v.kind == KindFloat {
		return strconv.FormatFloat(v.floatVal, 'f', -1, 64)
	}
	return strconv.FormatInt(v.intVal, 10)
}

// SettingEntry describes one tunable entry of the profile file.
type SettingEntry struct {
	// ID is the stable identifier used on the command line, e.g. "weapon_dof".
	ID string
	// ConfigKey is the dotted key inside the profile file.
	ConfigKey string
	Kind      ValueKind
	Category  Category
	// Competitive is the recommended value for minimal visual noise and
	// input latency.
	Competitive Value
	Description string
}

// entries is the full catalog in display order. The table mirrors the
// settings the game exposes through its PROFSAVE profile.
var entries = []SettingEntry{
	{
		ID:          "hdr_peak_brightness",
		ConfigKey:   "GstRender.DisplayMappingHdr10PeakLuma",
		Kind:        KindFloat,
		Category:    CategoryDisplay,
		Competitive: FloatValue(400),
		Description: "HDR peak brightness (nits)",
	},
	{
		ID:          "weapon_dof",
		ConfigKey:   "GstRender.WeaponDOF",
		Kind:        KindBool,
		Category:    CategoryVisual,
		Competitive: BoolValue(false),
		Description: "Weapon depth of field",
	},
	{
		ID:          "chromatic_aberration",
		ConfigKey:   "GstRender.ChromaticAberration",
		Kind:        KindBool,
		Category:    CategoryVisual,
		Competitive: BoolValue(false),
		Description: "Chromatic aberration",
	},
	{
		ID:          "film_grain",
		ConfigKey:   "GstRender.FilmGrain",
		Kind:        KindBool,
		Category:    CategoryVisual,
		Competitive: BoolValue(false),
		Description: "Film grain",
	},
	{
		ID:          "vignette",
		ConfigKey:   "GstRender.Vignette",
		Kind:        KindBool,
		Category:    CategoryVisual,
		Competitive: BoolValue(false),
		Description: "Vignette",
	},
	{
		ID:          "lens_distortion",
		ConfigKey:   "GstRender.LensDistortion",
		Kind:        KindBool,
		Category:    CategoryVisual,
		Competitive: BoolValue(false),
		Description: "Lens distortion",
	},
	{
		ID:          "motion_blur_weapon",
		ConfigKey:   "GstRender.MotionBlurWeapon",
		Kind:        KindFloat,
		Category:    CategoryVisual,
		Competitive: FloatValue(0),
		Description: "Motion blur on the weapon",
	},
	{
		ID:          "motion_blur_world",
		ConfigKey:   "GstRender.MotionBlurWorld",
		Kind:        KindFloat,
		Category:    CategoryVisual,
		Competitive: FloatValue(0),
		Description: "Motion blur on the world",
	},
	{
		ID:          "nvidia_low_latency",
		ConfigKey:   "GstRender.NvidiaLowLatency",
		Kind:        KindBool,
		Category:    CategoryPerformance,
		Competitive: BoolValue(true),
		Description: "NVIDIA low latency mode",
	},
	{
		ID:          "amd_low_latency",
		ConfigKey:   "GstRender.AMDLowLatency",
		Kind:        KindBool,
		Category:    CategoryPerformance,
		Competitive: BoolValue(true),
		Description: "AMD low latency mode",
	},
	{
		ID:          "intel_low_latency",
		ConfigKey:   "GstRender.IntelLowLatency",
		Kind:        KindBool,
		Category:    CategoryPerformance,
		Competitive: BoolValue(true),
		Description: "Intel low latency mode",
	},
	{
		ID:          "future_frame_rendering",
		ConfigKey:   "GstRender.FutureFrameRendering",
		Kind:        KindBool,
		Category:    CategoryPerformance,
		Competitive: BoolValue(false),
		Description: "Future frame rendering",
	},
	{
		ID:          "tinnitus",
		ConfigKey:   "GstAudio.Volume_Tinnitus",
		Kind:        KindFloat,
		Category:    CategoryAudio,
		Competitive: FloatValue(0),
		Description: "Tinnitus effect volume",
	},
}

var (
	byID        = make(map[string]int, len(entries))
	byConfigKey = make(map[string]int, len(entries))
)

func init() {
	for i, entry := range entries {
		byID[entry.ID] = i
		byConfigKey[entry.ConfigKey] = i
	}
}

// Entries returns the catalog in display order.
func Entries() []SettingEntry {
	result := make([]SettingEntry, len(entries))
	copy(result, entries)
	return result
}

// ByID looks up an entry by its stable identifier.
func ByID(id string) (SettingEntry, bool) {
	i, ok := byID[id]
	if !ok {
		return SettingEntry{}, false
	}
	return entries[i], true
}

// ByConfigKey looks up an entry by its profile file key. Matching is
// case-sensitive and exact.
func ByConfigKey(key string) (SettingEntry, bool) {
	i, ok := byConfigKey[key]
	if !ok {
		return SettingEntry{}, false
	}
	return entries[i], true
}

// CompetitiveDefaults returns the competitive value for every entry outside
// the display category, keyed by config key. Display entries depend on the
// connected monitor and are applied separately.
func CompetitiveDefaults() map[string]Value {
	defaults := make(map[string]Value, len(entries))
	for _, entry := range entries {
		if entry.Category == CategoryDisplay {
			continue
		}
		defaults[entry.ConfigKey] = entry.Competitive
	}
	return defaults
}

// ParseValue parses raw user input into a typed value for the entry.
func ParseValue(entry SettingEntry, raw string) (Value, error) {
	switch entry.Kind {
	case KindBool:
		switch raw {
		case "0", "false", "off":
			return BoolValue(false), nil
		case "1", "true", "on":
			return BoolValue(true), nil
		default:
			return Value{}, errors.NewValidationError(
				fmt.Sprintf("value for %s must be 0 or 1, got %q", entry.ConfigKey, raw))
		}
	case KindInt:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, errors.NewValidationError(
				fmt.Sprintf("value for %s must be an integer, got %q", entry.ConfigKey, raw))
		}
		return IntValue(parsed), nil
	case KindFloat:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, errors.NewValidationError(
				fmt.Sprintf("value for %s must be a number, got %q", entry.ConfigKey, raw))
		}
		return FloatValue(parsed), nil
	default:
		return Value{}, errors.NewValidationError(
			fmt.Sprintf("unknown value kind for %s", entry.ConfigKey))
	}
}
