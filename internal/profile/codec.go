package profile

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	apperrors "github.com/Recol/bf6-settings-manager/internal/errors"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeBytes sniffs the BOM, decodes the payload to text, and reports the
// encoding so encodeText can reproduce the original framing.
func decodeBytes(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		text := string(data[len(bomUTF8):])
		if !utf8.ValidString(text) {
			return "", 0, apperrors.NewAppError(apperrors.ErrEncoding, "profile is not valid UTF-8")
		}
		return text, EncodingUTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", 0, apperrors.NewAppErrorf(apperrors.ErrEncoding, "malformed UTF-16LE profile: %v", err)
		}
		return string(decoded), EncodingUTF16LE, nil
	case bytes.HasPrefix(data, bomUTF16BE):
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", 0, apperrors.NewAppErrorf(apperrors.ErrEncoding, "malformed UTF-16BE profile: %v", err)
		}
		return string(decoded), EncodingUTF16BE, nil
	default:
		if !utf8.Valid(data) {
			return "", 0, apperrors.NewAppError(apperrors.ErrEncoding, "profile is not valid UTF-8")
		}
		return string(data), EncodingUTF8, nil
	}
}

// encodeText converts text back to the byte encoding the document came in.
func encodeText(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingUTF8:
		return []byte(text), nil
	case EncodingUTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case EncodingUTF16LE:
		encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, apperrors.NewAppErrorf(apperrors.ErrEncoding, "cannot encode UTF-16LE profile: %v", err)
		}
		return encoded, nil
	case EncodingUTF16BE:
		encoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, apperrors.NewAppErrorf(apperrors.ErrEncoding, "cannot encode UTF-16BE profile: %v", err)
		}
		return encoded, nil
	default:
		return nil, apperrors.NewAppError(apperrors.ErrEncoding, "unknown document encoding")
	}
}
