package markers

import (
	"errors"
	"fmt"
)

var ErrMalformedConflict = errors.New("malformed conflict markers")

// pending tracks a conflict block between its start marker and the
// point where it either closes or turns out to be malformed.
type pending struct {
	start  Marker
	base   *Marker
	sep    Marker
	sawSep bool
}

// Parse extracts every conflict region from data.
//
// Parsing is tolerant: a start marker that never reaches a separator
// and end marker yields no region and is reported as an Issue instead
// of aborting the parse. A separator or end marker with no open start
// is plain text. A second ||||||| inside one block is ignored in favor
// of the first. Parse never mutates data, and parsing the same bytes
// twice yields structurally identical documents.
func Parse(data []byte) Document {
	doc := Document{Source: data}

	var open *pending
	for _, m := range Scan(data) {
		switch m.Kind {
		case KindStart:
			if open != nil {
				doc.Issues = append(doc.Issues, unterminated(open))
			}
			open = &pending{start: m}
		case KindBase:
			if open != nil && !open.sawSep && open.base == nil {
				b := m
				open.base = &b
			}
		case KindSeparator:
			if open != nil && !open.sawSep {
				open.sep = m
				open.sawSep = true
			}
		case KindEnd:
			if open == nil || !open.sawSep {
				// Stray end marker, or an end before any separator.
				// Not a conflict boundary; the open block (if any)
				// stays open and is judged at the next start or EOF.
				continue
			}
			doc.Regions = append(doc.Regions, buildRegion(data, len(doc.Regions), open, m))
			open = nil
		}
	}
	if open != nil {
		doc.Issues = append(doc.Issues, unterminated(open))
	}

	return doc
}

func buildRegion(data []byte, index int, p *pending, end Marker) Region {
	r := Region{
		Index:         index,
		StartOffset:   p.start.Offset,
		EndOffset:     lineEnd(data, end.Offset),
		StartLine:     p.start.Line,
		EndLine:       end.Line,
		LocalLabel:    p.start.Label,
		IncomingLabel: end.Label,
	}

	localFrom := lineEnd(data, p.start.Offset)
	if p.base != nil {
		r.HasBase = true
		r.BaseLabel = p.base.Label
		r.Local = data[localFrom:p.base.Offset]
		r.Base = data[lineEnd(data, p.base.Offset):p.sep.Offset]
	} else {
		r.Local = data[localFrom:p.sep.Offset]
	}
	r.Incoming = data[lineEnd(data, p.sep.Offset):end.Offset]

	return r
}

func unterminated(p *pending) Issue {
	missing := "======= separator"
	if p.sawSep {
		missing = ">>>>>>> end marker"
	}
	return Issue{
		Line:   p.start.Line,
		Offset: p.start.Offset,
		Detail: fmt.Sprintf("unterminated conflict at line %d: missing %s", p.start.Line+1, missing),
	}
}

// lineEnd returns the offset just past the line starting at off,
// including its newline when present.
func lineEnd(data []byte, off int) int {
	for i := off; i < len(data); i++ {
		if data[i] == '\n' {
			return i + 1
		}
	}
	return len(data)
}

// IssueErr converts the document's first issue into an error wrapping
// ErrMalformedConflict, or nil if the parse was clean.
func (d Document) IssueErr() error {
	if len(d.Issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMalformedConflict, d.Issues[0].Detail)
}

// IsResolved reports whether data contains no conflict regions and no
// marker issues. Marker-like text that does not form a valid conflict
// block does not count as a conflict.
func IsResolved(data []byte) bool {
	doc := Parse(data)
	return len(doc.Regions) == 0 && len(doc.Issues) == 0
}
