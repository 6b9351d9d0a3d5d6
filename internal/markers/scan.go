package markers

import (
	"bytes"
	"strings"
)

var (
	markStart = []byte("<<<<<<<")
	markBase  = []byte("|||||||")
	markMid   = []byte("=======")
	markEnd   = []byte(">>>>>>>")
)

// Scan reports every conflict marker line in data, in document order.
//
// A marker must occupy the start of its own line; marker-like text in
// the middle of a line is never reported. Scan does no pairing: a lone
// ======= in prose shows up here and is discarded by the extractor.
func Scan(data []byte) []Marker {
	var out []Marker

	offset := 0
	line := 0
	for _, raw := range splitLinesKeepEOL(data) {
		if kind, ok := markerKind(raw); ok {
			out = append(out, Marker{
				Kind:   kind,
				Offset: offset,
				Line:   line,
				Label:  markerLabel(raw),
			})
		}
		offset += len(raw)
		line++
	}
	return out
}

func markerKind(line []byte) (Kind, bool) {
	switch {
	case bytes.HasPrefix(line, markStart):
		return KindStart, true
	case bytes.HasPrefix(line, markBase):
		return KindBase, true
	case bytes.HasPrefix(line, markMid):
		return KindSeparator, true
	case bytes.HasPrefix(line, markEnd):
		return KindEnd, true
	}
	return 0, false
}

// markerLabel returns the trailing text on a marker line ("HEAD",
// "branch-name"), informational only.
func markerLabel(line []byte) string {
	rest := string(line[len(markStart):])
	rest = strings.TrimRight(rest, "\r\n")
	return strings.TrimSpace(rest)
}

// splitLinesKeepEOL splits on '\n', keeping the terminator with each
// line. A final line without a newline is returned as-is.
func splitLinesKeepEOL(b []byte) [][]byte {
	if len(b) == 0 {
		return nil
	}

	var out [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		if b[i] == '\n' {
			out = append(out, b[start:i+1])
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}
