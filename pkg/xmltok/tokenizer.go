package xmltok

import (
	"bytes"
	"io"
)

// state is the coarse phase of the tokenizer, mirroring spec §4.2's state
// enumeration. stateProlog covers the prolog both before and after the
// DTD; stateInsideDTD is a state of its own so the DTD internal subset
// grammar (§4.2.2) does not have to share a state value with the prolog's
// comment/PI/DOCTYPE dispatch.
type state uint8

const (
	stateStart state = iota
	stateProlog
	stateInsideDTD
	stateElements
	stateAfterRoot
	stateFinished
	stateError
)

var (
	bomBytes        = []byte{0xEF, 0xBB, 0xBF}
	litXMLDecl      = []byte("<?xml")
	litCommentOpen  = []byte("<!--")
	litCommentClose = []byte("-->")
	litCDataOpen    = []byte("<![CDATA[")
	litCDataClose   = []byte("]]>")
	litDoctype      = []byte("<!DOCTYPE")
	litEntity       = []byte("<!ENTITY")
	litSystem       = []byte("SYSTEM")
	litPublic       = []byte("PUBLIC")
	litForbidden    = []byte("]]>")
	litDoubleDash   = []byte("--")
	litPIClose      = []byte("?>")
)

// Tokenizer drives a Stream through the XML productions described in
// spec §4 and emits one Token per call to Next. It holds no containers and
// performs no allocation beyond the occasional *Error value returned at a
// failure site (spec §5, §7).
type Tokenizer struct {
	stream Stream
	opts   Options

	state state
	depth uint32
	inTag bool

	seenDeclaration bool
	seenDoctype     bool
	seenRoot        bool

	fragment     bool
	fragmentName string

	tokenCount int
}

// NewTokenizer constructs a Tokenizer over a complete document.
func NewTokenizer(input []byte, opts ...Options) *Tokenizer {
	return &Tokenizer{
		stream: newStream(input),
		opts:   JoinOptions(opts...),
		state:  stateStart,
	}
}

// NewFragmentTokenizer constructs a Tokenizer that behaves as if it were
// already positioned inside the content of an element named fragmentName,
// at depth 1. No ElementStart is ever emitted for that virtual element;
// prolog and DTD productions are disabled (spec §4.2.4). fragmentName is
// stored verbatim and has no bearing on tokenization — structure validation
// (matching this name against a closing tag) is out of scope.
func NewFragmentTokenizer(input []byte, fragmentName string, opts ...Options) *Tokenizer {
	return &Tokenizer{
		stream:          newStream(input),
		opts:            JoinOptions(opts...),
		state:           stateElements,
		depth:           1,
		seenDeclaration: true,
		seenDoctype:     true,
		seenRoot:        true,
		fragment:        true,
		fragmentName:    fragmentName,
	}
}

// Stream exposes the current cursor, read-only, for callers that want to
// report context beyond what a Token's span already carries.
func (t *Tokenizer) Stream() *Stream { return &t.stream }

// Depth reports the current element-nesting bookkeeping counter (spec §3).
// It is not validated against matching close tags.
func (t *Tokenizer) Depth() uint32 { return t.depth }

// FragmentName returns the name passed to NewFragmentTokenizer, or "" for a
// full-document Tokenizer.
func (t *Tokenizer) FragmentName() string { return t.fragmentName }

// IsFragment reports whether this Tokenizer was constructed with
// NewFragmentTokenizer.
func (t *Tokenizer) IsFragment() bool { return t.fragment }

// Next pulls the next token. It returns io.EOF once tokenization is
// complete, exactly as the teacher's ReadToken does. Once a *Error has been
// returned, every subsequent call returns io.EOF: the tokenizer does not
// recover from a fatal error (spec §7).
func (t *Tokenizer) Next() (Token, error) {
	if t.state == stateFinished || t.state == stateError {
		return Token{}, io.EOF
	}
	if t.opts.nodesLimitSet && t.opts.nodesLimit > 0 && t.tokenCount >= t.opts.nodesLimit {
		return t.fail(newError(ErrNodesLimitReached, t.stream.GenTextPos()))
	}
	tok, ok, err := t.step()
	if err != nil {
		return t.fail(err)
	}
	if !ok {
		t.state = stateFinished
		return Token{}, io.EOF
	}
	t.tokenCount++
	return tok, nil
}

func (t *Tokenizer) fail(err error) (Token, error) {
	t.state = stateError
	return Token{}, err
}

// step runs the state machine forward until it has a token to emit, the
// input is exhausted, or a well-formedness rule is violated. Looping here
// (rather than recursing) is what keeps nested-element handling iterative
// (spec §4.2.5): every case either emits a token and returns, or advances
// the stream or changes state and lets the loop re-enter with fresh state.
// Reaching the end of the input moves the state to stateFinished.
func (t *Tokenizer) step() (Token, bool, error) {
	for {
		switch t.state {
		case stateStart:
			tok, ok, err := t.stepStart()
			if err != nil || ok {
				return tok, ok, err
			}
		case stateProlog:
			tok, ok, err := t.stepProlog()
			if err != nil || ok {
				return tok, ok, err
			}
		case stateInsideDTD:
			tok, ok, err := t.stepInsideDTD()
			if err != nil || ok {
				return tok, ok, err
			}
		case stateElements:
			tok, ok, err := t.stepElements()
			if err != nil || ok {
				return tok, ok, err
			}
		case stateAfterRoot:
			tok, ok, err := t.stepAfterRoot()
			if err != nil || ok {
				return tok, ok, err
			}
		default:
			return Token{}, false, nil
		}
	}
}

// stepStart handles the BOM strip and the one-shot XML declaration check.
func (t *Tokenizer) stepStart() (Token, bool, error) {
	if t.stream.pos == 0 && t.stream.StartsWith(bomBytes) {
		t.stream.Advance(len(bomBytes))
	}
	if !t.stream.StartsWith(litXMLDecl) {
		t.state = stateProlog
		return Token{}, false, nil
	}
	next, ok := t.stream.ByteAt(t.stream.pos + len(litXMLDecl))
	if !ok || !isWhitespace(next) {
		t.state = stateProlog
		return Token{}, false, nil
	}
	tok, err := t.parseDeclaration()
	if err != nil {
		return Token{}, false, err
	}
	t.seenDeclaration = true
	t.state = stateProlog
	return tok, true, nil
}

// stepProlog is spec §4.2.1's "until the root element is entered" grammar:
// comments, PIs, at most one DTD, and whitespace, in any order, until the
// first `<Name` opens the root element.
func (t *Tokenizer) stepProlog() (Token, bool, error) {
	t.stream.SkipSpaces()
	if t.stream.AtEnd() {
		t.state = stateFinished
		return Token{}, false, nil
	}
	switch {
	case t.stream.StartsWith(litCommentOpen):
		tok, err := t.parseComment()
		return tok, err == nil, err
	case t.stream.StartsWith([]byte("<?")):
		tok, err := t.parsePI()
		return tok, err == nil, err
	case t.stream.StartsWith(litDoctype):
		tok, err := t.parseDoctype()
		return tok, err == nil, err
	case t.stream.StartsWith([]byte("<")):
		tok, err := t.parseElementStart()
		if err != nil {
			return Token{}, false, err
		}
		t.seenRoot = true
		t.state = stateElements
		return tok, true, nil
	default:
		return Token{}, false, newError(ErrUnknownToken, t.stream.GenTextPos())
	}
}

// stepInsideDTD is the internal-subset loop (spec §4.2.2): ENTITY
// declarations are recognized and emitted; every other markup declaration
// and every parameter-entity reference is skipped as an opaque span.
func (t *Tokenizer) stepInsideDTD() (Token, bool, error) {
	t.stream.SkipSpaces()
	if t.stream.AtEnd() {
		return Token{}, false, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
	}
	if t.stream.curr() == ']' {
		start := t.stream.pos
		t.stream.Advance(1)
		t.stream.SkipSpaces()
		if err := t.stream.ConsumeByte('>'); err != nil {
			return Token{}, false, err
		}
		span := t.stream.Span(start, t.stream.pos)
		t.state = stateProlog
		return newDtdEndToken(span), true, nil
	}
	if t.stream.StartsWith(litEntity) {
		tok, consumed, err := t.parseEntityDeclaration()
		if err != nil {
			return Token{}, false, err
		}
		if consumed {
			return tok, true, nil
		}
		// Parameter-entity (`<!ENTITY % ...>`) or external general-entity
		// (`<!ENTITY name SYSTEM|PUBLIC ...>`) form: fall through to the
		// opaque skip below, the cursor was restored by parseEntityDeclaration.
	}
	if t.stream.StartsWith([]byte("<!")) {
		if err := t.skipMarkupDeclaration(); err != nil {
			return Token{}, false, err
		}
		return Token{}, false, nil
	}
	if t.stream.curr() == '%' {
		if err := t.skipParameterEntityRef(); err != nil {
			return Token{}, false, err
		}
		return Token{}, false, nil
	}
	return Token{}, false, newError(ErrUnknownToken, t.stream.GenTextPos())
}

// stepElements is the content/tag dispatch for spec §4.2.3: while inTag is
// set we are scanning the attribute list of an already-opened start tag;
// otherwise we are scanning element content at depth >= 1.
func (t *Tokenizer) stepElements() (Token, bool, error) {
	if t.inTag {
		return t.stepTagInterior()
	}
	return t.stepContent()
}

func (t *Tokenizer) stepTagInterior() (Token, bool, error) {
	if t.stream.AtEnd() {
		return Token{}, false, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
	}
	b := t.stream.curr()
	switch {
	case b == '>':
		start := t.stream.pos
		t.stream.Advance(1)
		if err := t.checkDepthLimit(); err != nil {
			return Token{}, false, err
		}
		t.depth++
		t.inTag = false
		return newElementEndToken(ElementEndOpen, Span{}, Span{}, t.stream.Span(start, t.stream.pos)), true, nil
	case b == '/':
		start := t.stream.pos
		if err := t.stream.ConsumeBytes([]byte("/>")); err != nil {
			return Token{}, false, err
		}
		t.inTag = false
		tok := newElementEndToken(ElementEndEmpty, Span{}, Span{}, t.stream.Span(start, t.stream.pos))
		if t.depth == 0 {
			t.state = stateAfterRoot
		}
		return tok, true, nil
	case isWhitespace(b):
		t.stream.SkipSpaces()
		if t.stream.AtEnd() {
			return Token{}, false, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
		}
		if t.stream.curr() == '>' || t.stream.curr() == '/' {
			return Token{}, false, nil
		}
		return t.parseAttribute()
	default:
		return Token{}, false, newError(ErrInvalidSpace, t.stream.GenTextPos())
	}
}

func (t *Tokenizer) stepContent() (Token, bool, error) {
	start := t.stream.pos
	for !t.stream.AtEnd() && t.stream.curr() != '<' {
		r, size, ok := decodeRune(t.stream.input[t.stream.pos:])
		if !ok {
			return Token{}, false, newError(ErrInvalidUtf8, t.stream.GenTextPos())
		}
		if !isXMLChar(r) {
			return Token{}, false, newNonXmlChar(t.stream.GenTextPos(), r)
		}
		t.stream.Advance(size)
	}
	end := t.stream.pos
	if end > start {
		textBytes := t.stream.input[start:end]
		if idx := bytes.Index(textBytes, litForbidden); idx >= 0 {
			return Token{}, false, newError(ErrInvalidCharacterData, t.stream.GenTextPosFrom(start+idx))
		}
		span := t.stream.Span(start, end)
		return newTextToken(span), true, nil
	}
	if t.stream.AtEnd() {
		t.state = stateFinished
		return Token{}, false, nil
	}
	return t.dispatchTag()
}

// dispatchTag handles every form that can follow '<' while depth >= 1
// (spec §4.2.3's bullet list).
func (t *Tokenizer) dispatchTag() (Token, bool, error) {
	switch {
	case t.stream.StartsWith([]byte("</")):
		tok, err := t.parseEndTag()
		return tok, err == nil, err
	case t.stream.StartsWith(litCommentOpen):
		tok, err := t.parseComment()
		return tok, err == nil, err
	case t.stream.StartsWith(litCDataOpen):
		tok, err := t.parseCdata()
		return tok, err == nil, err
	case t.stream.StartsWith([]byte("<?")):
		tok, err := t.parsePI()
		return tok, err == nil, err
	case t.stream.StartsWith([]byte("<")):
		tok, err := t.parseElementStart()
		return tok, err == nil, err
	default:
		return Token{}, false, newError(ErrUnknownToken, t.stream.GenTextPos())
	}
}

// stepAfterRoot is spec §4.2.3's tail state: once depth returns to 0 only
// comments, PIs, and whitespace remain legal.
func (t *Tokenizer) stepAfterRoot() (Token, bool, error) {
	t.stream.SkipSpaces()
	if t.stream.AtEnd() {
		t.state = stateFinished
		return Token{}, false, nil
	}
	switch {
	case t.stream.StartsWith(litCommentOpen):
		tok, err := t.parseComment()
		return tok, err == nil, err
	case t.stream.StartsWith([]byte("<?")):
		tok, err := t.parsePI()
		return tok, err == nil, err
	default:
		return Token{}, false, newError(ErrUnknownToken, t.stream.GenTextPos())
	}
}

func (t *Tokenizer) checkDepthLimit() error {
	if t.opts.maxDepthSet && t.opts.maxDepth > 0 && t.depth+1 > t.opts.maxDepth {
		return newError(ErrNodesLimitReached, t.stream.GenTextPos())
	}
	return nil
}

func (s *Stream) curr() byte {
	b, _ := s.ByteAt(s.pos)
	return b
}
