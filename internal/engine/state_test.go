package engine

import (
	"errors"
	"testing"

	"github.com/nkwon/threeway/internal/markers"
)

const twoWayDoc = "a\n<<<<<<< HEAD\nx\n=======\ny\n>>>>>>> branch\nb\n"

const diff3Doc = "a\n<<<<<<< HEAD\nc1\n||||||| base\nc0\n=======\nc2\n>>>>>>> b\nz\n"

const twoConflictDoc = "a\n" +
	"<<<<<<< HEAD\nx1\n=======\ny1\n>>>>>>> b\n" +
	"mid\n" +
	"<<<<<<< HEAD\nx2\n=======\ny2\n>>>>>>> b\n" +
	"z\n"

func mustParse(t *testing.T, input string) markers.Document {
	t.Helper()
	doc := markers.Parse([]byte(input))
	if err := doc.IssueErr(); err != nil {
		t.Fatalf("fixture is malformed: %v", err)
	}
	return doc
}

func newState(t *testing.T, input string) *State {
	t.Helper()
	state, err := NewState(mustParse(t, input), 100)
	if err != nil {
		t.Fatal(err)
	}
	return state
}

func TestNewStateRejectsBadUndoSize(t *testing.T) {
	if _, err := NewState(markers.Document{}, 0); err == nil {
		t.Error("expected error for maxUndoSize 0")
	}
}

func TestSetResolutionAndGet(t *testing.T) {
	s := newState(t, twoWayDoc)

	res, err := s.Resolution(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceNone {
		t.Errorf("fresh region should be unresolved, got %q", res.Source)
	}

	if err := s.SetResolution(0, SourceLocal, nil); err != nil {
		t.Fatal(err)
	}
	res, _ = s.Resolution(0)
	if res.Source != SourceLocal {
		t.Errorf("source = %q, want local", res.Source)
	}
}

func TestSetResolutionUnknownIndex(t *testing.T) {
	s := newState(t, twoWayDoc)
	for _, index := range []int{-1, 1, 99} {
		err := s.SetResolution(index, SourceLocal, nil)
		if !errors.Is(err, ErrRegionNotFound) {
			t.Errorf("index %d: expected ErrRegionNotFound, got %v", index, err)
		}
	}
	if _, err := s.Resolution(5); !errors.Is(err, ErrRegionNotFound) {
		t.Errorf("expected ErrRegionNotFound, got %v", err)
	}
}

func TestSetResolutionBaseWithoutBaseSection(t *testing.T) {
	s := newState(t, twoWayDoc)

	err := s.SetResolution(0, SourceBase, nil)
	if !errors.Is(err, ErrInvalidResolution) {
		t.Fatalf("expected ErrInvalidResolution, got %v", err)
	}

	// State must be untouched after the failure.
	res, _ := s.Resolution(0)
	if res.Source != SourceNone {
		t.Errorf("failed set must not change state, got %q", res.Source)
	}
	if s.UndoDepth() != 0 {
		t.Errorf("failed set must not create undo history, depth %d", s.UndoDepth())
	}
}

func TestSetResolutionBaseWithBaseSection(t *testing.T) {
	s := newState(t, diff3Doc)
	if err := s.SetResolution(0, SourceBase, nil); err != nil {
		t.Fatalf("base resolution must succeed when HasBase: %v", err)
	}
}

func TestSetResolutionCustomRequiresText(t *testing.T) {
	s := newState(t, twoWayDoc)

	if err := s.SetResolution(0, SourceCustom, nil); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("expected ErrInvalidResolution for nil custom, got %v", err)
	}
	// An empty, non-nil body is a valid "drop the block" resolution.
	if err := s.SetResolution(0, SourceCustom, []byte{}); err != nil {
		t.Errorf("empty custom text should be accepted: %v", err)
	}
}

func TestSetResolutionRejectsNone(t *testing.T) {
	s := newState(t, twoWayDoc)
	if err := s.SetResolution(0, SourceNone, nil); !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("expected ErrInvalidResolution, got %v", err)
	}
}

func TestClearResolutionIdempotent(t *testing.T) {
	s := newState(t, twoWayDoc)

	// Clearing an unset region is a no-op, not an error.
	if err := s.ClearResolution(0); err != nil {
		t.Fatal(err)
	}
	if s.UndoDepth() != 0 {
		t.Error("no-op clear must not create undo history")
	}

	if err := s.SetResolution(0, SourceIncoming, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearResolution(0); err != nil {
		t.Fatal(err)
	}
	res, _ := s.Resolution(0)
	if res.Source != SourceNone {
		t.Errorf("clear should reset to none, got %q", res.Source)
	}

	if err := s.ClearResolution(99); !errors.Is(err, ErrRegionNotFound) {
		t.Errorf("expected ErrRegionNotFound, got %v", err)
	}
}

func TestAllResolvedAndCount(t *testing.T) {
	s := newState(t, twoConflictDoc)

	if s.AllResolved() {
		t.Error("fresh state must not be all-resolved")
	}
	if s.ResolvedCount() != 0 {
		t.Errorf("count = %d, want 0", s.ResolvedCount())
	}

	s.SetResolution(1, SourceLocal, nil)
	if s.AllResolved() {
		t.Error("one of two resolved is not all-resolved")
	}
	if s.ResolvedCount() != 1 {
		t.Errorf("count = %d, want 1", s.ResolvedCount())
	}

	s.SetResolution(0, SourceIncoming, nil)
	if !s.AllResolved() {
		t.Error("expected all-resolved")
	}
}

func TestSetAll(t *testing.T) {
	s := newState(t, twoConflictDoc)
	if err := s.SetAll(SourceLocal); err != nil {
		t.Fatal(err)
	}
	if !s.AllResolved() {
		t.Error("SetAll must resolve everything")
	}
}

func TestSetAllBaseRejectedWhenAnyRegionLacksBase(t *testing.T) {
	// First conflict has a base section, second does not.
	mixed := "<<<<<<< HEAD\nx\n||||||| b0\no\n=======\ny\n>>>>>>> b\n" +
		"mid\n" +
		"<<<<<<< HEAD\nx2\n=======\ny2\n>>>>>>> b\n"
	s := newState(t, mixed)

	err := s.SetAll(SourceBase)
	if !errors.Is(err, ErrInvalidResolution) {
		t.Fatalf("expected ErrInvalidResolution, got %v", err)
	}
	if s.ResolvedCount() != 0 {
		t.Error("failed SetAll must leave state untouched")
	}
}

func TestResolutionsArriveInAnyOrder(t *testing.T) {
	s := newState(t, twoConflictDoc)
	if err := s.SetResolution(1, SourceIncoming, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.SetResolution(0, SourceLocal, nil); err != nil {
		t.Fatal(err)
	}
	// Re-resolving is allowed arbitrarily many times.
	if err := s.SetResolution(0, SourceBoth, nil); err != nil {
		t.Fatal(err)
	}
	res, _ := s.Resolution(0)
	if res.Source != SourceBoth {
		t.Errorf("source = %q, want both", res.Source)
	}
}

func TestUndoRedo(t *testing.T) {
	s := newState(t, twoWayDoc)

	if err := s.Undo(); err == nil {
		t.Error("undo with no history must fail")
	}

	s.SetResolution(0, SourceLocal, nil)
	s.SetResolution(0, SourceIncoming, nil)

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	res, _ := s.Resolution(0)
	if res.Source != SourceLocal {
		t.Errorf("after undo: %q, want local", res.Source)
	}

	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	res, _ = s.Resolution(0)
	if res.Source != SourceIncoming {
		t.Errorf("after redo: %q, want incoming", res.Source)
	}

	// A new mutation invalidates redo history.
	s.Undo()
	s.SetResolution(0, SourceBoth, nil)
	if err := s.Redo(); err == nil {
		t.Error("redo after a fresh mutation must fail")
	}
}

func TestUndoBounded(t *testing.T) {
	state, err := NewState(mustParse(t, twoWayDoc), 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		state.SetResolution(0, SourceLocal, nil)
	}
	if state.UndoDepth() != 2 {
		t.Errorf("undo depth = %d, want 2", state.UndoDepth())
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in   string
		want Source
		ok   bool
	}{
		{"local", SourceLocal, true},
		{"ours", SourceLocal, true},
		{"incoming", SourceIncoming, true},
		{"theirs", SourceIncoming, true},
		{"remote", SourceIncoming, true},
		{"base", SourceBase, true},
		{"both", SourceBoth, true},
		{"custom", SourceNone, false},
		{"", SourceNone, false},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseSource(%q) = %q, %v", tt.in, got, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseSource(%q): expected error", tt.in)
		}
	}
}
