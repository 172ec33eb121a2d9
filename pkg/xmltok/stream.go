package xmltok

import "bytes"

// Stream is a byte-level cursor over a complete, in-memory document. It
// never allocates: every consumer method either advances s.pos or returns a
// Span/byte that shares storage with the input. pos is always on a UTF-8
// codepoint boundary of the original input when the input is valid UTF-8;
// an invalid byte sequence surfaces as ErrInvalidUtf8 the first time a
// consumer tries to decode across it.
type Stream struct {
	input []byte
	pos   int
}

func newStream(input []byte) Stream {
	return Stream{input: input}
}

// Pos reports the current byte offset.
func (s *Stream) Pos() int { return s.pos }

// Len reports the length of the input in bytes.
func (s *Stream) Len() int { return len(s.input) }

// AtEnd reports whether the cursor has reached the end of the input.
func (s *Stream) AtEnd() bool { return s.pos >= len(s.input) }

// ByteAt returns the byte at an arbitrary offset into the input, if any.
func (s *Stream) ByteAt(offset int) (byte, bool) {
	if offset < 0 || offset >= len(s.input) {
		return 0, false
	}
	return s.input[offset], true
}

// Span builds a Span over [start, end) of the input this Stream was
// constructed from.
func (s *Stream) Span(start, end int) Span { return newSpan(s.input, start, end) }

// CurrByte returns the byte at the cursor, or ErrUnexpectedEndOfStream.
func (s *Stream) CurrByte() (byte, error) {
	if s.AtEnd() {
		return 0, newError(ErrUnexpectedEndOfStream, s.GenTextPos())
	}
	return s.input[s.pos], nil
}

// NextByte peeks at the byte following the cursor, or
// ErrUnexpectedEndOfStream.
func (s *Stream) NextByte() (byte, error) {
	if s.pos+1 >= len(s.input) {
		return 0, newError(ErrUnexpectedEndOfStream, s.GenTextPosFrom(s.pos+1))
	}
	return s.input[s.pos+1], nil
}

// Advance moves the cursor forward n bytes, saturating at the input length.
func (s *Stream) Advance(n int) {
	s.pos += n
	if s.pos > len(s.input) {
		s.pos = len(s.input)
	}
}

// SkipSpaces advances over ASCII XML whitespace bytes. Non-ASCII whitespace
// is never skipped.
func (s *Stream) SkipSpaces() {
	for s.pos < len(s.input) && isWhitespace(s.input[s.pos]) {
		s.pos++
	}
}

// StartsWith reports whether the bytes at the cursor match lit exactly.
func (s *Stream) StartsWith(lit []byte) bool {
	if s.pos+len(lit) > len(s.input) {
		return false
	}
	return bytes.Equal(s.input[s.pos:s.pos+len(lit)], lit)
}

// ConsumeByte advances past b if it is the current byte, else fails with
// InvalidChar.
func (s *Stream) ConsumeByte(b byte) error {
	curr, err := s.CurrByte()
	if err != nil {
		return err
	}
	if curr != b {
		return newInvalidChar(s.GenTextPos(), []byte{b}, curr)
	}
	s.pos++
	return nil
}

// ConsumeBytes advances past lit if it matches at the cursor, else fails
// with InvalidCharMultiple.
func (s *Stream) ConsumeBytes(lit []byte) error {
	if !s.StartsWith(lit) {
		return newInvalidCharMultiple(s.GenTextPos(), lit)
	}
	s.pos += len(lit)
	return nil
}

// ConsumeName reads one XML Name: the first character must be a
// NameStartChar, subsequent characters must be NameChar, and at least one
// character is required.
func (s *Stream) ConsumeName() (Span, error) {
	start := s.pos
	r, size, ok := decodeRune(s.input[s.pos:])
	if !ok {
		if s.AtEnd() {
			return Span{}, newError(ErrUnexpectedEndOfStream, s.GenTextPos())
		}
		return Span{}, newError(ErrInvalidUtf8, s.GenTextPos())
	}
	if !isNameStartChar(r) {
		return Span{}, newError(ErrInvalidName, s.GenTextPos())
	}
	s.pos += size
	for s.pos < len(s.input) {
		r, size, ok := decodeRune(s.input[s.pos:])
		if !ok {
			break
		}
		if !isNameChar(r) {
			break
		}
		s.pos += size
	}
	return s.Span(start, s.pos), nil
}

// ConsumeQName reads a Name, then splits it on ':' into a prefix and local
// part if present. More than one ':' is InvalidName; the local part must
// itself begin with a NameStartChar (the "<-p>" rule: a NameChar such as
// '-' cannot immediately follow the colon).
func (s *Stream) ConsumeQName() (prefix, local Span, err error) {
	full, err := s.ConsumeName()
	if err != nil {
		return Span{}, Span{}, err
	}
	raw := full.Bytes()
	first := bytes.IndexByte(raw, ':')
	if first < 0 {
		return Span{}, full, nil
	}
	if bytes.IndexByte(raw[first+1:], ':') >= 0 {
		return Span{}, Span{}, newError(ErrInvalidName, s.GenTextPosFrom(full.Start))
	}
	colonAbs := full.Start + first
	localStart := colonAbs + 1
	if localStart >= full.End {
		return Span{}, Span{}, newError(ErrInvalidName, s.GenTextPosFrom(full.Start))
	}
	r, _, ok := decodeRune(s.input[localStart:full.End])
	if !ok || !isNameStartChar(r) {
		return Span{}, Span{}, newError(ErrInvalidName, s.GenTextPosFrom(localStart))
	}
	return s.Span(full.Start, colonAbs), s.Span(localStart, full.End), nil
}

// ConsumeEq consumes optional spaces, a literal '=', then optional spaces.
func (s *Stream) ConsumeEq() error {
	s.SkipSpaces()
	if err := s.ConsumeByte('='); err != nil {
		return err
	}
	s.SkipSpaces()
	return nil
}

// ConsumeQuotedString consumes a ' or " delimited literal and returns the
// delimiter used and the span of its inner content. A literal '<' inside
// the value, or any byte outside the XML Char range, is InvalidChar /
// NonXmlChar respectively. An unterminated literal is
// UnexpectedEndOfStream.
func (s *Stream) ConsumeQuotedString() (quote byte, value Span, err error) {
	curr, err := s.CurrByte()
	if err != nil {
		return 0, Span{}, err
	}
	if curr != '\'' && curr != '"' {
		return 0, Span{}, newError(ErrInvalidQuote, s.GenTextPos())
	}
	quote = curr
	s.pos++
	start := s.pos
	for {
		if s.AtEnd() {
			return 0, Span{}, newError(ErrUnexpectedEndOfStream, s.GenTextPos())
		}
		b := s.input[s.pos]
		if b == quote {
			value = s.Span(start, s.pos)
			s.pos++
			return quote, value, nil
		}
		if b == '<' {
			return 0, Span{}, newInvalidChar(s.GenTextPos(), nil, b)
		}
		r, size, ok := decodeRune(s.input[s.pos:])
		if !ok {
			return 0, Span{}, newError(ErrInvalidUtf8, s.GenTextPos())
		}
		if !isXMLChar(r) {
			return 0, Span{}, newNonXmlChar(s.GenTextPos(), r)
		}
		s.pos += size
	}
}

// ConsumeReference parses &name;, &#DDDD;, or &#xHHHH; at the cursor. The
// five predefined entities are returned as ReferenceEntity, never decoded
// here (spec §4.1 — corrected as of the upstream 0.13.5 fix this module is
// grounded on).
func (s *Stream) ConsumeReference() (Reference, error) {
	ampPos := s.pos
	if err := s.ConsumeByte('&'); err != nil {
		return Reference{}, err
	}
	if !s.AtEnd() && s.input[s.pos] == '#' {
		s.pos++
		digitsStart := s.pos
		for s.pos < len(s.input) && s.input[s.pos] != ';' {
			s.pos++
		}
		if s.AtEnd() {
			return Reference{}, newError(ErrUnexpectedEndOfStream, s.GenTextPosFrom(ampPos))
		}
		r, ok := parseNumericRef(s.input[digitsStart:s.pos])
		if !ok {
			return Reference{}, newError(ErrInvalidReference, s.GenTextPosFrom(ampPos))
		}
		s.pos++
		return Reference{kind: ReferenceChar, char: r}, nil
	}
	name, err := s.ConsumeName()
	if err != nil {
		return Reference{}, newError(ErrInvalidReference, s.GenTextPosFrom(ampPos))
	}
	if err := s.ConsumeByte(';'); err != nil {
		return Reference{}, newError(ErrInvalidReference, s.GenTextPosFrom(ampPos))
	}
	return Reference{kind: ReferenceEntity, entity: name}, nil
}

// SkipChars advances while the UTF-8 decoded code point at the cursor
// satisfies pred. It stops, without error, at invalid UTF-8 or EOF so the
// next consumer call can surface the precise failure.
func (s *Stream) SkipChars(pred func(rune) bool) {
	for s.pos < len(s.input) {
		r, size, ok := decodeRune(s.input[s.pos:])
		if !ok || !pred(r) {
			return
		}
		s.pos += size
	}
}

// GenTextPos computes the 1-based (row, column) of the cursor.
func (s *Stream) GenTextPos() TextPos { return textPosAt(s.input, s.pos) }

// GenTextPosFrom computes the 1-based (row, column) of an arbitrary byte
// offset into the same input.
func (s *Stream) GenTextPosFrom(offset int) TextPos { return textPosAt(s.input, offset) }
