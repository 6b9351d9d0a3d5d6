package markers

// Kind identifies one of the four conflict marker line types.
type Kind int

const (
	KindStart     Kind = iota // <<<<<<<
	KindBase                  // |||||||
	KindSeparator             // =======
	KindEnd                   // >>>>>>>
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindBase:
		return "base"
	case KindSeparator:
		return "separator"
	case KindEnd:
		return "end"
	}
	return "unknown"
}

// Marker is a single conflict marker line occurrence.
// Offset is the byte offset of the line start; Line is 0-based.
type Marker struct {
	Kind   Kind
	Offset int
	Line   int
	Label  string // trailing text after the marker, e.g. a ref name
}

// Region is one extracted conflict block.
//
// StartOffset..EndOffset spans from the first byte of the start marker
// line through the last byte of the end marker line (including its
// newline when present). The variant fields hold the raw lines strictly
// between the markers with line endings preserved; marker lines are
// never part of any variant.
//
// Base is nil when the block has no ||||||| section. That is distinct
// from an empty base section, which is a non-nil empty slice with
// HasBase set.
type Region struct {
	Index int

	StartOffset int
	EndOffset   int
	StartLine   int
	EndLine     int

	Local    []byte
	Base     []byte
	Incoming []byte
	HasBase  bool

	LocalLabel    string
	BaseLabel     string
	IncomingLabel string
}

// Issue reports a malformed conflict that was skipped during parsing.
// Line and Offset reference the start marker that opened the block.
type Issue struct {
	Line   int
	Offset int
	Detail string
}

func (i Issue) String() string {
	return i.Detail
}

// Document is the result of parsing one conflict-marked text buffer.
// Source is the exact input; Regions are ordered by StartOffset.
type Document struct {
	Source  []byte
	Regions []Region
	Issues  []Issue
}
