package xmltok

import "strconv"

// ErrorKind classifies a well-formedness failure. See spec §7 for the
// taxonomy this mirrors.
type ErrorKind uint8

const (
	ErrUnexpectedEndOfStream ErrorKind = iota
	ErrInvalidChar
	ErrInvalidCharMultiple
	ErrInvalidQuote
	ErrInvalidSpace
	ErrInvalidString
	ErrNonXmlChar
	ErrInvalidUtf8
	ErrInvalidName
	ErrInvalidReference
	ErrInvalidExternalID
	ErrInvalidCharacterData
	ErrUnknownToken
	ErrXmlDeclExists
	ErrUnknownXmlDeclVersion
	ErrDoctypeExists
	ErrNodesLimitReached
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedEndOfStream:
		return "UnexpectedEndOfStream"
	case ErrInvalidChar:
		return "InvalidChar"
	case ErrInvalidCharMultiple:
		return "InvalidCharMultiple"
	case ErrInvalidQuote:
		return "InvalidQuote"
	case ErrInvalidSpace:
		return "InvalidSpace"
	case ErrInvalidString:
		return "InvalidString"
	case ErrNonXmlChar:
		return "NonXmlChar"
	case ErrInvalidUtf8:
		return "InvalidUtf8"
	case ErrInvalidName:
		return "InvalidName"
	case ErrInvalidReference:
		return "InvalidReference"
	case ErrInvalidExternalID:
		return "InvalidExternalID"
	case ErrInvalidCharacterData:
		return "InvalidCharacterData"
	case ErrUnknownToken:
		return "UnknownToken"
	case ErrXmlDeclExists:
		return "XmlDeclExists"
	case ErrUnknownXmlDeclVersion:
		return "UnknownXmlDeclVersion"
	case ErrDoctypeExists:
		return "DoctypeExists"
	case ErrNodesLimitReached:
		return "NodesLimitReached"
	default:
		return "Unknown"
	}
}

// Error reports a fatal well-formedness failure with its location. Every
// tokenization error is a *Error; the tokenizer never panics (spec §7).
type Error struct {
	Kind ErrorKind
	Pos  TextPos

	// Expected holds, for InvalidChar/InvalidCharMultiple/InvalidString, the
	// byte(s) the grammar required at Pos. Fixed-size so no error value
	// allocates a backing array.
	Expected    [16]byte
	ExpectedLen uint8

	// Actual holds the byte that was found instead, for InvalidChar.
	Actual byte

	// Ch holds the offending code point, for NonXmlChar.
	Ch rune
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := "xmltok: " + e.Kind.String() + " at " + strconv.FormatUint(uint64(e.Pos.Row), 10) + ":" + strconv.FormatUint(uint64(e.Pos.Col), 10)
	switch e.Kind {
	case ErrInvalidChar:
		if e.ExpectedLen > 0 {
			return base + " (expected " + strconv.Quote(string(e.Expected[:e.ExpectedLen])) + ", got " + strconv.QuoteRune(rune(e.Actual)) + ")"
		}
		return base + " (got " + strconv.QuoteRune(rune(e.Actual)) + ")"
	case ErrInvalidCharMultiple, ErrInvalidString:
		if e.ExpectedLen > 0 {
			return base + " (expected " + strconv.Quote(string(e.Expected[:e.ExpectedLen])) + ")"
		}
		return base
	case ErrNonXmlChar:
		return base + " (code point " + strconv.QuoteRune(e.Ch) + ")"
	default:
		return base
	}
}

func newError(kind ErrorKind, pos TextPos) *Error {
	return &Error{Kind: kind, Pos: pos}
}

func newInvalidChar(pos TextPos, expected []byte, actual byte) *Error {
	e := &Error{Kind: ErrInvalidChar, Pos: pos, Actual: actual}
	n := copy(e.Expected[:], expected)
	e.ExpectedLen = uint8(n)
	return e
}

func newInvalidCharMultiple(pos TextPos, expected []byte) *Error {
	e := &Error{Kind: ErrInvalidCharMultiple, Pos: pos}
	n := copy(e.Expected[:], expected)
	e.ExpectedLen = uint8(n)
	return e
}

func newInvalidString(pos TextPos, expected []byte) *Error {
	e := &Error{Kind: ErrInvalidString, Pos: pos}
	n := copy(e.Expected[:], expected)
	e.ExpectedLen = uint8(n)
	return e
}

func newNonXmlChar(pos TextPos, ch rune) *Error {
	return &Error{Kind: ErrNonXmlChar, Pos: pos, Ch: ch}
}
