package xmltok

// TokenKind tags which variant a Token carries (spec §3).
type TokenKind uint8

const (
	TokenDeclaration TokenKind = iota
	TokenProcessingInstruction
	TokenComment
	TokenDtdStart
	TokenEmptyDtd
	TokenEntityDeclaration
	TokenDtdEnd
	TokenElementStart
	TokenAttribute
	TokenElementEnd
	TokenText
	TokenCdata
)

func (k TokenKind) String() string {
	switch k {
	case TokenDeclaration:
		return "Declaration"
	case TokenProcessingInstruction:
		return "ProcessingInstruction"
	case TokenComment:
		return "Comment"
	case TokenDtdStart:
		return "DtdStart"
	case TokenEmptyDtd:
		return "EmptyDtd"
	case TokenEntityDeclaration:
		return "EntityDeclaration"
	case TokenDtdEnd:
		return "DtdEnd"
	case TokenElementStart:
		return "ElementStart"
	case TokenAttribute:
		return "Attribute"
	case TokenElementEnd:
		return "ElementEnd"
	case TokenText:
		return "Text"
	case TokenCdata:
		return "Cdata"
	default:
		return "Unknown"
	}
}

// ElementEndKind tags the variant carried by a TokenElementEnd token.
type ElementEndKind uint8

const (
	ElementEndOpen ElementEndKind = iota
	ElementEndClose
	ElementEndEmpty
)

// Token is a tagged-variant view over one lexical unit of the document.
// Every field is a Span (or built from one); nothing here owns a copy of
// the input. Only the fields relevant to Kind() are meaningful — reading a
// field that does not apply to the current Kind returns its zero value.
type Token struct {
	kind TokenKind
	span Span

	// Declaration
	version       Span
	encoding      Span
	hasEncoding   bool
	standalone    bool
	hasStandalone bool

	// ProcessingInstruction
	target     Span
	content    Span
	hasContent bool

	// Comment, Text, Cdata
	text Span

	// DtdStart, EmptyDtd
	name          Span
	externalID    Span
	hasExternalID bool

	// EntityDeclaration
	entityName Span
	definition Span

	// ElementStart, ElementEnd (Close), Attribute
	prefix Span
	local  Span

	// Attribute
	value Span

	// ElementEnd
	endKind ElementEndKind
}

// Kind reports which variant this token carries.
func (t Token) Kind() TokenKind { return t.kind }

// Span reports the token's total span, from its opening delimiter to its
// closing delimiter.
func (t Token) Span() Span { return t.span }

// Version returns the version span of a Declaration token.
func (t Token) Version() Span { return t.version }

// Encoding returns the encoding span of a Declaration token, if present.
func (t Token) Encoding() (Span, bool) { return t.encoding, t.hasEncoding }

// Standalone returns the standalone value of a Declaration token, if
// present.
func (t Token) Standalone() (bool, bool) { return t.standalone, t.hasStandalone }

// Target returns the target span of a ProcessingInstruction token.
func (t Token) Target() Span { return t.target }

// Content returns the content span of a ProcessingInstruction token, if
// present.
func (t Token) Content() (Span, bool) { return t.content, t.hasContent }

// Text returns the text span of a Comment, Text, or Cdata token.
func (t Token) Text() Span { return t.text }

// Name returns the name span of a DtdStart or EmptyDtd token.
func (t Token) Name() Span { return t.name }

// ExternalID returns the external identifier span of a DtdStart or
// EmptyDtd token, if present.
func (t Token) ExternalID() (Span, bool) { return t.externalID, t.hasExternalID }

// EntityName returns the name span of an EntityDeclaration token.
func (t Token) EntityName() Span { return t.entityName }

// Definition returns the opaque definition span of an EntityDeclaration
// token.
func (t Token) Definition() Span { return t.definition }

// Prefix returns the qualified-name prefix of an ElementStart, Attribute,
// or closing ElementEnd token. It is the empty span when the name is
// unqualified.
func (t Token) Prefix() Span { return t.prefix }

// Local returns the qualified-name local part of an ElementStart, Attribute,
// or closing ElementEnd token.
func (t Token) Local() Span { return t.local }

// Value returns the value span of an Attribute token. References inside the
// value are preserved as raw bytes; the core never expands them.
func (t Token) Value() Span { return t.value }

// End returns the element-end variant of an ElementEnd token.
func (t Token) End() ElementEndKind { return t.endKind }
