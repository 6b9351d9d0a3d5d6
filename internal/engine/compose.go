package engine

import (
	"bytes"
	"fmt"

	"github.com/nkwon/threeway/internal/markers"
)

// Mode selects how Compose treats unresolved conflicts.
type Mode string

const (
	// ModeStrict fails with ErrUnresolved on the first region without a
	// resolution; no partial output is produced.
	ModeStrict Mode = "strict"
	// ModePartial leaves unresolved regions in place, marker-delimited
	// and byte-identical to the input, so composition is always safe to
	// call incrementally.
	ModePartial Mode = "partial"
)

// Applied records one resolution the composer actually spliced in.
type Applied struct {
	Index  int
	Source Source
}

// ResolvedDocument is the output of composition.
type ResolvedDocument struct {
	Text    []byte
	Applied []Applied
}

// Compose reconstructs the output document from the original text and
// the resolution map. Text outside conflict spans is copied through
// unchanged. Composing twice with identical inputs yields identical
// bytes; it borrows the document and resolutions without mutating
// either.
func Compose(doc markers.Document, res map[int]Resolution, mode Mode) (ResolvedDocument, error) {
	if mode != ModeStrict && mode != ModePartial {
		return ResolvedDocument{}, fmt.Errorf("unknown compose mode %q", mode)
	}

	// Strict mode promises no partial output, so unresolved regions are
	// rejected before a single byte is assembled.
	if mode == ModeStrict {
		for _, region := range doc.Regions {
			if res[region.Index].Source == SourceNone {
				return ResolvedDocument{}, fmt.Errorf("%w: conflict %d at line %d", ErrUnresolved, region.Index, region.StartLine+1)
			}
		}
	}

	var out bytes.Buffer
	var applied []Applied
	cursor := 0
	for _, region := range doc.Regions {
		out.Write(doc.Source[cursor:region.StartOffset])

		r := res[region.Index]
		switch r.Source {
		case SourceNone:
			out.Write(doc.Source[region.StartOffset:region.EndOffset])
			cursor = region.EndOffset
			continue
		case SourceLocal:
			out.Write(region.Local)
		case SourceIncoming:
			out.Write(region.Incoming)
		case SourceBase:
			if !region.HasBase {
				return ResolvedDocument{}, fmt.Errorf("%w: conflict %d has no base section", ErrInvalidResolution, region.Index)
			}
			out.Write(region.Base)
		case SourceBoth:
			out.Write(region.Local)
			out.Write(region.Incoming)
		case SourceCustom:
			out.Write(r.Custom)
			// Keep the splice line-aligned with the text that follows.
			if len(r.Custom) > 0 && r.Custom[len(r.Custom)-1] != '\n' {
				out.WriteByte('\n')
			}
		default:
			return ResolvedDocument{}, fmt.Errorf("%w: %q", ErrInvalidResolution, r.Source)
		}
		applied = append(applied, Applied{Index: region.Index, Source: r.Source})
		cursor = region.EndOffset
	}
	out.Write(doc.Source[cursor:])

	return ResolvedDocument{Text: out.Bytes(), Applied: applied}, nil
}

// DetectUniform reports whether merged is exactly doc composed with a
// single source applied to every conflict, trying local, incoming,
// both, then base. Used to pre-seed state when a merged file was
// already resolved one-sidedly.
func DetectUniform(doc markers.Document, merged []byte) (Source, bool) {
	if len(doc.Regions) == 0 {
		return SourceNone, false
	}
	for _, source := range []Source{SourceLocal, SourceIncoming, SourceBoth, SourceBase} {
		res := make(map[int]Resolution, len(doc.Regions))
		skip := false
		for _, region := range doc.Regions {
			if source == SourceBase && !region.HasBase {
				skip = true
				break
			}
			res[region.Index] = Resolution{Source: source}
		}
		if skip {
			continue
		}
		composed, err := Compose(doc, res, ModeStrict)
		if err != nil {
			continue
		}
		if bytes.Equal(composed.Text, merged) {
			return source, true
		}
	}
	return SourceNone, false
}
