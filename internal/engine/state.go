package engine

import (
	"errors"
	"fmt"

	"github.com/nkwon/threeway/internal/markers"
)

var (
	ErrRegionNotFound    = errors.New("conflict region not found")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrUnresolved        = errors.New("unresolved conflict")
)

// Source names where a region's replacement text comes from.
type Source string

const (
	SourceNone     Source = ""
	SourceLocal    Source = "local"
	SourceIncoming Source = "incoming"
	SourceBase     Source = "base"
	SourceBoth     Source = "both"
	SourceCustom   Source = "custom"
)

// ParseSource maps user-supplied text to a Source. "ours" and "theirs"
// are accepted as mergetool-convention aliases.
func ParseSource(s string) (Source, error) {
	switch s {
	case "local", "ours":
		return SourceLocal, nil
	case "incoming", "theirs", "remote":
		return SourceIncoming, nil
	case "base":
		return SourceBase, nil
	case "both":
		return SourceBoth, nil
	}
	return SourceNone, fmt.Errorf("%w: %q (expected local|incoming|base|both)", ErrInvalidResolution, s)
}

// Resolution is the chosen replacement for one conflict region.
// The zero value means "not resolved yet".
type Resolution struct {
	Source Source
	Custom []byte // set only when Source == SourceCustom
}

// State owns the conflict-index → Resolution mapping for one parsed
// document, with bounded undo/redo over resolution changes. The
// document itself is never mutated; resolutions live beside it.
type State struct {
	doc         markers.Document
	res         map[int]Resolution
	undoStack   []map[int]Resolution
	redoStack   []map[int]Resolution
	maxUndoSize int
}

// NewState creates resolution state for a parsed document.
// maxUndoSize controls how many undo snapshots to retain (must be >= 1).
func NewState(doc markers.Document, maxUndoSize int) (*State, error) {
	if maxUndoSize < 1 {
		return nil, fmt.Errorf("maxUndoSize must be >= 1, got %d", maxUndoSize)
	}
	return &State{
		doc:         doc,
		res:         make(map[int]Resolution),
		maxUndoSize: maxUndoSize,
	}, nil
}

// Document returns the parsed document this state was built from.
func (s *State) Document() markers.Document {
	return s.doc
}

// SetResolution records the resolution for the conflict at index.
//
// SourceBase requires the region to carry a base section; a region
// without one fails with ErrInvalidResolution rather than silently
// aliasing base to local. SourceCustom requires custom text (an empty,
// non-nil slice is valid and deletes the block). State is unchanged on
// any failure.
func (s *State) SetResolution(index int, source Source, custom []byte) error {
	region, err := s.region(index)
	if err != nil {
		return err
	}

	switch source {
	case SourceLocal, SourceIncoming, SourceBoth:
	case SourceBase:
		if !region.HasBase {
			return fmt.Errorf("%w: conflict %d has no base section", ErrInvalidResolution, index)
		}
	case SourceCustom:
		if custom == nil {
			return fmt.Errorf("%w: custom resolution requires text", ErrInvalidResolution)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResolution, source)
	}

	s.beginMutation()

	r := Resolution{Source: source}
	if source == SourceCustom {
		r.Custom = append([]byte(nil), custom...)
	}
	s.res[index] = r
	return nil
}

// SetAll resolves every conflict with the same source. Validation runs
// over all regions before anything changes, so a document where one
// region lacks a base section rejects SourceBase without touching state.
func (s *State) SetAll(source Source) error {
	switch source {
	case SourceLocal, SourceIncoming, SourceBoth:
	case SourceBase:
		for _, region := range s.doc.Regions {
			if !region.HasBase {
				return fmt.Errorf("%w: conflict %d has no base section", ErrInvalidResolution, region.Index)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidResolution, source)
	}

	s.beginMutation()
	for _, region := range s.doc.Regions {
		s.res[region.Index] = Resolution{Source: source}
	}
	return nil
}

// ClearResolution resets the conflict at index back to unresolved.
// Clearing an already-unresolved conflict is a no-op, not an error.
func (s *State) ClearResolution(index int) error {
	if _, err := s.region(index); err != nil {
		return err
	}
	if _, ok := s.res[index]; !ok {
		return nil
	}
	s.beginMutation()
	delete(s.res, index)
	return nil
}

// Resolution returns the current resolution for the conflict at index.
// A known region that was never set reports SourceNone.
func (s *State) Resolution(index int) (Resolution, error) {
	if _, err := s.region(index); err != nil {
		return Resolution{}, err
	}
	return s.res[index], nil
}

// AllResolved reports whether every region has a resolution.
func (s *State) AllResolved() bool {
	for _, region := range s.doc.Regions {
		if s.res[region.Index].Source == SourceNone {
			return false
		}
	}
	return true
}

// ResolvedCount returns how many regions currently have a resolution.
func (s *State) ResolvedCount() int {
	n := 0
	for _, region := range s.doc.Regions {
		if s.res[region.Index].Source != SourceNone {
			n++
		}
	}
	return n
}

// Compose splices the current resolutions over the original text.
func (s *State) Compose(mode Mode) (ResolvedDocument, error) {
	return Compose(s.doc, s.res, mode)
}

// Undo restores the resolution map from before the last mutation.
func (s *State) Undo() error {
	if len(s.undoStack) == 0 {
		return fmt.Errorf("no undo history available")
	}
	s.pushWithLimit(&s.redoStack, s.res)
	last := len(s.undoStack) - 1
	s.res = s.undoStack[last]
	s.undoStack = s.undoStack[:last]
	return nil
}

// Redo reapplies a previously undone mutation.
func (s *State) Redo() error {
	if len(s.redoStack) == 0 {
		return fmt.Errorf("no redo history available")
	}
	s.pushWithLimit(&s.undoStack, s.res)
	last := len(s.redoStack) - 1
	s.res = s.redoStack[last]
	s.redoStack = s.redoStack[:last]
	return nil
}

// UndoDepth returns the number of undo snapshots available.
func (s *State) UndoDepth() int {
	return len(s.undoStack)
}

// RedoDepth returns the number of redo snapshots available.
func (s *State) RedoDepth() int {
	return len(s.redoStack)
}

func (s *State) region(index int) (markers.Region, error) {
	if index < 0 || index >= len(s.doc.Regions) {
		return markers.Region{}, fmt.Errorf("%w: index %d out of bounds [0, %d)", ErrRegionNotFound, index, len(s.doc.Regions))
	}
	return s.doc.Regions[index], nil
}

// beginMutation snapshots the current map to undo and clears redo.
func (s *State) beginMutation() {
	s.pushWithLimit(&s.undoStack, s.res)
	s.redoStack = s.redoStack[:0]
	s.res = cloneResolutions(s.res)
}

func (s *State) pushWithLimit(stack *[]map[int]Resolution, res map[int]Resolution) {
	*stack = append(*stack, res)
	if len(*stack) > s.maxUndoSize {
		*stack = (*stack)[1:]
	}
}

func cloneResolutions(res map[int]Resolution) map[int]Resolution {
	out := make(map[int]Resolution, len(res))
	for k, v := range res {
		// Custom slices are never mutated after SetResolution copies
		// them, so sharing them across snapshots is safe.
		out[k] = v
	}
	return out
}
