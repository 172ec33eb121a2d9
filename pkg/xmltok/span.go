package xmltok

import "unsafe"

// Span is an immutable half-open byte range [Start, End) into the document
// a Tokenizer was constructed from. A Span never copies the bytes it names;
// it shares storage with the input slice for the lifetime of the caller's
// reference to that slice.
type Span struct {
	input []byte
	Start int
	End   int
}

func newSpan(input []byte, start, end int) Span {
	return Span{input: input, Start: start, End: end}
}

// Bytes returns the span's bytes, sharing storage with the input.
func (s Span) Bytes() []byte {
	if s.input == nil {
		return nil
	}
	return s.input[s.Start:s.End]
}

// AsStr returns the span's bytes as a string without copying.
func (s Span) AsStr() string {
	b := s.Bytes()
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Range returns the span's (start, end) byte offsets.
func (s Span) Range() (int, int) {
	return s.Start, s.End
}

// IsEmpty reports whether the span covers zero bytes.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// TextPos resolves the 1-based (row, column) of the span's start offset.
func (s Span) TextPos() TextPos {
	return textPosAt(s.input, s.Start)
}
