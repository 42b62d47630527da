// Package profile implements the PROFSAVE document model and patch engine:
// parsing the flat key=value file into an ordered line sequence, mutating
// value segments in place, and serializing back byte-for-byte.
package profile

import (
	"runtime"
	"strings"
)

// Line is one physical line of a profile document. Recognized key=value
// lines capture the segments around the value so a rewrite touches nothing
// else; opaque lines (comments, blanks, anything unrecognized) carry their
// text verbatim.
type Line struct {
	raw string // content without terminator
	eol string // "\r\n", "\n", "\r", or "" for an unterminated final line

	isKV       bool
	key        string // trimmed key text
	left       string // everything up to and including '='
	valueLead  string // whitespace between '=' and the value
	value      string // trimmed value text
	valueTrail string // whitespace between the value and line end
}

// IsKV reports whether the line parsed as a key=value pair.
func (l *Line) IsKV() bool { return l.isKV }

// Key returns the trimmed key for kv lines, "" otherwise.
func (l *Line) Key() string { return l.key }

// Value returns the trimmed value text for kv lines, "" otherwise.
func (l *Line) Value() string { return l.value }

// setValue replaces the value segment and rebuilds the raw text around it.
func (l *Line) setValue(v string) {
	l.value = v
	l.raw = l.left + l.valueLead + v + l.valueTrail
}

// parseLine splits content at the first '=' and classifies it. A line is a
// kv pair when the text left of '=' trims to a single non-empty token with
// no interior whitespace; everything else stays opaque.
func parseLine(raw, eol string) *Line {
	line := &Line{raw: raw, eol: eol}
	idx := strings.IndexByte(raw, '=')
	if idx < 0 {
		return line
	}
	key := strings.Trim(raw[:idx], " \t")
	if key == "" || strings.ContainsAny(key, " \t") {
		return line
	}
	right := raw[idx+1:]
	afterLead := strings.TrimLeft(right, " \t")
	value := strings.TrimRight(afterLead, " \t")

	line.isKV = true
	line.key = key
	line.left = raw[:idx+1]
	line.valueLead = right[:len(right)-len(afterLead)]
	line.value = value
	line.valueTrail = afterLead[len(value):]
	return line
}

// Encoding identifies the byte encoding a document was read with. Write
// re-encodes with the same one.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

// String returns the encoding name for display.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8 (bom)"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "unknown"
	}
}

// Document is the ordered line sequence of one profile file. Serializing an
// unmodified document reproduces the original bytes exactly, including BOM
// and mixed line terminators.
type Document struct {
	encoding Encoding
	lines    []*Line
}

// ParseDocument builds a document from already-decoded text.
func ParseDocument(text string, encoding Encoding) *Document {
	return &Document{encoding: encoding, lines: parseText(text)}
}

// parseText splits text into lines, keeping each line's own terminator.
func parseText(text string) []*Line {
	var lines []*Line
	for start := 0; start < len(text); {
		i := start
		for i < len(text) && text[i] != '\n' && text[i] != '\r' {
			i++
		}
		raw := text[start:i]
		eol := ""
		if i < len(text) {
			if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				eol = "\r\n"
				i += 2
			} else {
				eol = text[i : i+1]
				i++
			}
		}
		lines = append(lines, parseLine(raw, eol))
		start = i
	}
	return lines
}

// Encoding returns the byte encoding the document was read with.
func (d *Document) Encoding() Encoding { return d.encoding }

// Len returns the number of physical lines.
func (d *Document) Len() int { return len(d.lines) }

// Lines returns the parsed lines in file order.
func (d *Document) Lines() []*Line {
	result := make([]*Line, len(d.lines))
	copy(result, d.lines)
	return result
}

// text serializes the document back to decoded text.
func (d *Document) text() string {
	var b strings.Builder
	for _, l := range d.lines {
		b.WriteString(l.raw)
		b.WriteString(l.eol)
	}
	return b.String()
}

// clone deep-copies the document so patching never mutates the input.
func (d *Document) clone() *Document {
	lines := make([]*Line, len(d.lines))
	for i, l := range d.lines {
		copied := *l
		lines[i] = &copied
	}
	return &Document{encoding: d.encoding, lines: lines}
}

// findFirst returns the first kv line with the key, or nil. Matching is
// case-sensitive and exact.
func (d *Document) findFirst(key string) *Line {
	for _, l := range d.lines {
		if l.isKV && l.key == key {
			return l
		}
	}
	return nil
}

// findAll returns every kv line with the key, in file order.
func (d *Document) findAll(key string) []*Line {
	var matches []*Line
	for _, l := range d.lines {
		if l.isKV && l.key == key {
			matches = append(matches, l)
		}
	}
	return matches
}

// dominantEOL returns the most frequent terminator in the document, falling
// back to the platform default for documents without one.
func (d *Document) dominantEOL() string {
	counts := make(map[string]int, 3)
	for _, l := range d.lines {
		if l.eol != "" {
			counts[l.eol]++
		}
	}
	best, bestCount := "", 0
	for _, eol := range []string{"\r\n", "\n", "\r"} {
		if counts[eol] > bestCount {
			best, bestCount = eol, counts[eol]
		}
	}
	if best == "" {
		return platformEOL()
	}
	return best
}

// appendLine adds a new kv line at the end. A final line without a
// terminator keeps that style: it gains one and the new line goes without.
func (d *Document) appendLine(key, value string) {
	eol := d.dominantEOL()
	newEOL := eol
	if n := len(d.lines); n > 0 && d.lines[n-1].eol == "" {
		d.lines[n-1].eol = eol
		newEOL = ""
	}
	d.lines = append(d.lines, parseLine(key+"="+value, newEOL))
}

func platformEOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}
