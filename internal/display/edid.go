// Package display probes connected monitors for their HDR peak luminance.
package display

import (
	"math"
)

const (
	edidBlockSize        = 128
	ctaExtensionTag      = 0x02
	extendedTagBlock     = 0x07
	hdrStaticMetadataTag = 0x06
)

// PeakLuminanceNits extracts the HDR peak luminance from raw EDID bytes.
// The boolean is false when the EDID carries no usable HDR static metadata;
// no default is ever fabricated.
func PeakLuminanceNits(edid []byte) (float64, bool) {
	code, ok := maxLuminanceCode(edid)
	if !ok || code == 0 {
		return 0, false
	}
	// CTA-861.3 : luminance = 50 * 2^(code/32) cd/m².
	return math.Round(50 * math.Pow(2, float64(code)/32)), true
}

// maxLuminanceCode walks the CTA-861 extension blocks for an HDR static
// metadata data block and returns its desired-content-max-luminance code.
func maxLuminanceCode(edid []byte) (byte, bool) {
	for offset := edidBlockSize; offset+edidBlockSize <= len(edid); offset += edidBlockSize {
		extension := edid[offset : offset+edidBlockSize]
		if extension[0] != ctaExtensionTag {
			continue
		}
		dtdOffset := int(extension[2])
		if dtdOffset > len(extension) {
			dtdOffset = len(extension)
		}
		pos := 4
		for pos < dtdOffset {
			header := extension[pos]
			tag := (header >> 5) & 0x07
			length := int(header & 0x1F)
			if pos+length >= len(extension) {
				break
			}
			if tag == extendedTagBlock && length >= 4 && extension[pos+1] == hdrStaticMetadataTag {
				return extension[pos+4], true
			}
			pos += length + 1
		}
	}
	return 0, false
}
