package profile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Recol/bf6-settings-manager/internal/catalog"
)

// DesiredSettings maps config keys to the values the caller wants applied.
// Keys absent from the map are left untouched in the document.
type DesiredSettings map[string]catalog.Value

// Change records one key rewrite performed by ApplyPatch.
type Change struct {
	Key      string
	Old      string // previous value text, "" when the key was appended
	New      string
	Appended bool
}

// ApplyPatch returns a patched copy of the document plus the per-key change
// list. For each desired key every matching line gets its value segment
// replaced in place, keeping the line's casing and whitespace; keys absent
// from the document are appended as new key=value lines at the end. All
// other lines pass through untouched. The input document is never mutated.
func ApplyPatch(doc *Document, desired DesiredSettings) (*Document, []Change) {
	result := doc.clone()

	keys := make([]string, 0, len(desired))
	for key := range desired {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		value := desired[key]
		matches := result.findAll(key)
		if len(matches) == 0 {
			text := formatValue(value, "")
			result.appendLine(key, text)
			changes = append(changes, Change{Key: key, New: text, Appended: true})
			continue
		}
		text := formatValue(value, matches[0].value)
		change := Change{Key: key, Old: matches[0].value, New: text}
		for _, line := range matches {
			line.setValue(text)
		}
		changes = append(changes, change)
	}
	return result, changes
}

// CurrentValues reads the present value text for each requested key. Keys
// not found in the document are left out of the result.
func CurrentValues(doc *Document, keys []string) map[string]string {
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		if line := doc.findFirst(key); line != nil {
			values[key] = line.value
		}
	}
	return values
}

// formatValue renders a typed value as profile text. Integers and booleans
// never carry a decimal point. Floats copy the decimal precision of the
// existing value text; when there is none to copy (a fresh append, an empty
// or point-less existing value) they get one decimal place.
func formatValue(v catalog.Value, existing string) string {
	if v.Kind() != catalog.KindFloat {
		return strconv.FormatInt(v.Int(), 10)
	}
	places := 1
	if idx := strings.IndexByte(existing, '.'); idx >= 0 {
		places = len(existing) - idx - 1
	}
	return strconv.FormatFloat(v.Float(), 'f', places, 64)
}
