package xmltok

import "bytes"

// requireSpace demands at least one ASCII whitespace byte at the cursor,
// then consumes all of it. Used everywhere the grammar says "space,
// Name" or similar mandatory separators (spec §4.2.1, §4.2.2).
func (t *Tokenizer) requireSpace() error {
	b, err := t.stream.CurrByte()
	if err != nil {
		return err
	}
	if !isWhitespace(b) {
		return newError(ErrInvalidSpace, t.stream.GenTextPos())
	}
	t.stream.SkipSpaces()
	return nil
}

// validateXMLCharsAt walks data (which starts at absolute offset absStart
// in the document) verifying every code point is a valid XML Char
// (spec §4.1). It is shared by comment, CDATA, and PI content scanning.
func (t *Tokenizer) validateXMLCharsAt(data []byte, absStart int) error {
	i := 0
	for i < len(data) {
		r, size, ok := decodeRune(data[i:])
		if !ok {
			return newError(ErrInvalidUtf8, t.stream.GenTextPosFrom(absStart+i))
		}
		if !isXMLChar(r) {
			return newNonXmlChar(t.stream.GenTextPosFrom(absStart+i), r)
		}
		i += size
	}
	return nil
}

// tryConsumeNamedAttr attempts to consume `name="value"` (or with ') at the
// cursor. If the name at the cursor does not match, the stream is restored
// and ok is false with a nil error — this is the look-ahead idiom spec §5
// calls out ("a caller may snapshot [the cursor] to implement look-ahead"),
// used here so the declaration's optional encoding/standalone attributes
// can be probed without committing.
func (t *Tokenizer) tryConsumeNamedAttr(name string) (value Span, ok bool, err error) {
	saved := t.stream
	n, err := t.stream.ConsumeName()
	if err != nil {
		t.stream = saved
		return Span{}, false, nil
	}
	if n.AsStr() != name {
		t.stream = saved
		return Span{}, false, nil
	}
	if err := t.stream.ConsumeEq(); err != nil {
		return Span{}, false, err
	}
	_, value, err = t.stream.ConsumeQuotedString()
	if err != nil {
		return Span{}, false, err
	}
	return value, true, nil
}

// parseDeclaration parses the XML declaration production (spec §4.2.1).
// The caller has already confirmed "<?xml" followed by whitespace sits at
// the cursor and that this is the first call (t.seenDeclaration is false).
func (t *Tokenizer) parseDeclaration() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeBytes(litXMLDecl); err != nil {
		return Token{}, err
	}
	if err := t.requireSpace(); err != nil {
		return Token{}, err
	}
	name, err := t.stream.ConsumeName()
	if err != nil {
		return Token{}, err
	}
	if name.AsStr() != "version" {
		return Token{}, newInvalidString(name.TextPos(), []byte("version"))
	}
	if err := t.stream.ConsumeEq(); err != nil {
		return Token{}, err
	}
	_, versionSpan, err := t.stream.ConsumeQuotedString()
	if err != nil {
		return Token{}, err
	}
	if versionSpan.AsStr() != "1.0" {
		return Token{}, newError(ErrUnknownXmlDeclVersion, versionSpan.TextPos())
	}

	var encodingSpan Span
	hasEncoding := false
	var standalone bool
	hasStandalone := false

	t.stream.SkipSpaces()
	if encSpan, ok, err := t.tryConsumeNamedAttr("encoding"); err != nil {
		return Token{}, err
	} else if ok {
		encodingSpan, hasEncoding = encSpan, true
		t.stream.SkipSpaces()
	}
	if standSpan, ok, err := t.tryConsumeNamedAttr("standalone"); err != nil {
		return Token{}, err
	} else if ok {
		hasStandalone = true
		switch standSpan.AsStr() {
		case "yes":
			standalone = true
		case "no":
			standalone = false
		default:
			return Token{}, newInvalidString(standSpan.TextPos(), []byte(`"yes" or "no"`))
		}
		t.stream.SkipSpaces()
	}
	if err := t.stream.ConsumeBytes(litPIClose); err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newDeclarationToken(versionSpan, encodingSpan, hasEncoding, standalone, hasStandalone, span), nil
}

// parseComment parses "<!--" ... "-->" (spec §4.2.3). The body may not
// contain "--" and may not end with "--->" (the fix spec.md attributes to
// 0.12.0).
func (t *Tokenizer) parseComment() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeBytes(litCommentOpen); err != nil {
		return Token{}, err
	}
	textStart := t.stream.pos
	idx := bytes.Index(t.stream.input[textStart:], litCommentClose)
	if idx < 0 {
		return Token{}, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
	}
	textEnd := textStart + idx
	textBytes := t.stream.input[textStart:textEnd]
	if err := t.validateXMLCharsAt(textBytes, textStart); err != nil {
		return Token{}, err
	}
	if bytes.Contains(textBytes, litDoubleDash) || (len(textBytes) > 0 && textBytes[len(textBytes)-1] == '-') {
		return Token{}, newInvalidChar(t.stream.GenTextPosFrom(textEnd), nil, '-')
	}
	t.stream.Advance(textEnd - t.stream.pos)
	if err := t.stream.ConsumeBytes(litCommentClose); err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newCommentToken(t.stream.Span(textStart, textEnd), span), nil
}

// parseCdata parses "<![CDATA[" ... "]]>" (spec §4.2.3).
func (t *Tokenizer) parseCdata() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeBytes(litCDataOpen); err != nil {
		return Token{}, err
	}
	textStart := t.stream.pos
	idx := bytes.Index(t.stream.input[textStart:], litCDataClose)
	if idx < 0 {
		return Token{}, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
	}
	textEnd := textStart + idx
	if err := t.validateXMLCharsAt(t.stream.input[textStart:textEnd], textStart); err != nil {
		return Token{}, err
	}
	t.stream.Advance(textEnd - t.stream.pos)
	if err := t.stream.ConsumeBytes(litCDataClose); err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newCdataToken(t.stream.Span(textStart, textEnd), span), nil
}

// isXMLTargetName reports whether name spells "xml" in any mix of case,
// the one PI target spec §4.2.1/§4.2.3 forbids anywhere but offset 0.
func isXMLTargetName(b []byte) bool {
	return len(b) == 3 && b[0]|0x20 == 'x' && b[1]|0x20 == 'm' && b[2]|0x20 == 'l'
}

// parsePI parses a processing instruction: "<?" Name (space content)? "?>".
func (t *Tokenizer) parsePI() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeBytes([]byte("<?")); err != nil {
		return Token{}, err
	}
	target, err := t.stream.ConsumeName()
	if err != nil {
		return Token{}, err
	}
	if isXMLTargetName(target.Bytes()) {
		// The only way a target of "xml" reaches the generic PI path is a
		// second declaration, or one not at byte 0 (spec §4.2.1); the
		// legitimate first declaration is recognized by stepStart and never
		// calls parsePI.
		return Token{}, newError(ErrXmlDeclExists, target.TextPos())
	}
	var content Span
	hasContent := false
	if !t.stream.StartsWith(litPIClose) {
		b, err := t.stream.CurrByte()
		if err != nil {
			return Token{}, err
		}
		if !isWhitespace(b) {
			return Token{}, newError(ErrInvalidSpace, t.stream.GenTextPos())
		}
		t.stream.SkipSpaces()
		contentStart := t.stream.pos
		idx := bytes.Index(t.stream.input[contentStart:], litPIClose)
		if idx < 0 {
			return Token{}, newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
		}
		contentEnd := contentStart + idx
		if err := t.validateXMLCharsAt(t.stream.input[contentStart:contentEnd], contentStart); err != nil {
			return Token{}, err
		}
		t.stream.Advance(contentEnd - t.stream.pos)
		content, hasContent = t.stream.Span(contentStart, contentEnd), true
	}
	if err := t.stream.ConsumeBytes(litPIClose); err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newPIToken(target, content, hasContent, span), nil
}

// parseExternalID recognizes the SYSTEM and PUBLIC forms only (Open
// Question 2: NOTATION and parameter-entity forms are out of scope for
// this grammar subset and never reach here).
func (t *Tokenizer) parseExternalID() (Span, error) {
	start := t.stream.pos
	if t.stream.StartsWith(litSystem) {
		if err := t.stream.ConsumeBytes(litSystem); err != nil {
			return Span{}, err
		}
		if err := t.requireSpace(); err != nil {
			return Span{}, err
		}
		if _, _, err := t.stream.ConsumeQuotedString(); err != nil {
			return Span{}, err
		}
		return t.stream.Span(start, t.stream.pos), nil
	}
	if err := t.stream.ConsumeBytes(litPublic); err != nil {
		return Span{}, err
	}
	if err := t.requireSpace(); err != nil {
		return Span{}, err
	}
	if _, _, err := t.stream.ConsumeQuotedString(); err != nil {
		return Span{}, err
	}
	if err := t.requireSpace(); err != nil {
		return Span{}, err
	}
	if _, _, err := t.stream.ConsumeQuotedString(); err != nil {
		return Span{}, err
	}
	return t.stream.Span(start, t.stream.pos), nil
}

// parseDoctype parses "<!DOCTYPE" Name ExternalID? ('[' | '>') (spec
// §4.2.2). It emits DtdStart when an internal subset follows, or EmptyDtd
// otherwise.
func (t *Tokenizer) parseDoctype() (Token, error) {
	if t.seenDoctype {
		return Token{}, newError(ErrDoctypeExists, t.stream.GenTextPos())
	}
	start := t.stream.pos
	if err := t.stream.ConsumeBytes(litDoctype); err != nil {
		return Token{}, err
	}
	if err := t.requireSpace(); err != nil {
		return Token{}, err
	}
	name, err := t.stream.ConsumeName()
	if err != nil {
		return Token{}, err
	}
	t.stream.SkipSpaces()

	var extID Span
	hasExtID := false
	if !t.stream.AtEnd() && t.stream.curr() != '[' && t.stream.curr() != '>' {
		if !t.stream.StartsWith(litSystem) && !t.stream.StartsWith(litPublic) {
			return Token{}, newError(ErrInvalidExternalID, t.stream.GenTextPos())
		}
		eid, err := t.parseExternalID()
		if err != nil {
			return Token{}, err
		}
		extID, hasExtID = eid, true
		t.stream.SkipSpaces()
	}

	if !t.stream.AtEnd() && t.stream.curr() == '[' {
		t.stream.Advance(1)
		t.seenDoctype = true
		t.state = stateInsideDTD
		span := t.stream.Span(start, t.stream.pos)
		return newDtdStartToken(name, extID, hasExtID, span), nil
	}
	if err := t.stream.ConsumeByte('>'); err != nil {
		return Token{}, err
	}
	t.seenDoctype = true
	span := t.stream.Span(start, t.stream.pos)
	return newEmptyDtdToken(name, extID, hasExtID, span), nil
}

// parseEntityDeclaration recognizes "<!ENTITY" Name QuotedValue ">" at the
// cursor. It reports consumed=false (and restores the cursor) only for the
// two ENTITY forms this module does not model as EntityDeclaration: a
// parameter entity ("<!ENTITY % ...>") and an external general entity
// ("<!ENTITY name SYSTEM|PUBLIC ...>") — so the caller falls back to the
// opaque skip for those (Open Question 1: such definitions are accepted as
// opaque spans by never being parsed as EntityDeclaration at all). Once
// neither applies, this has committed to the general-entity form: a bad
// Name, a missing separator, or an unquoted value is a genuine
// well-formedness error and is propagated, not swallowed.
func (t *Tokenizer) parseEntityDeclaration() (Token, bool, error) {
	saved := t.stream
	start := t.stream.pos
	if err := t.stream.ConsumeBytes(litEntity); err != nil {
		return Token{}, false, err
	}
	if err := t.requireSpace(); err != nil {
		return Token{}, false, err
	}
	if t.stream.AtEnd() || t.stream.curr() == '%' {
		t.stream = saved
		return Token{}, false, nil
	}
	name, err := t.stream.ConsumeName()
	if err != nil {
		return Token{}, false, err
	}
	if err := t.requireSpace(); err != nil {
		return Token{}, false, err
	}
	if t.stream.StartsWith(litSystem) || t.stream.StartsWith(litPublic) {
		t.stream = saved
		return Token{}, false, nil
	}
	_, def, err := t.stream.ConsumeQuotedString()
	if err != nil {
		return Token{}, false, err
	}
	t.stream.SkipSpaces()
	if err := t.stream.ConsumeByte('>'); err != nil {
		return Token{}, false, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newEntityDeclToken(name, def, span), true, nil
}

// skipMarkupDeclaration discards one "<!...>" markup declaration this
// module does not model (ELEMENT, ATTLIST, NOTATION, a parameter-entity form
// of ENTITY, or an external general entity), tracking quote and
// bracket-nesting state the way the teacher's directive scanner does so an
// embedded '>' inside a quoted literal or an enumerated-value bracket group
// does not end the skip early.
func (t *Tokenizer) skipMarkupDeclaration() error {
	if err := t.stream.ConsumeBytes([]byte("<!")); err != nil {
		return err
	}
	depth := 0
	quote := byte(0)
	for {
		if t.stream.AtEnd() {
			return newError(ErrUnexpectedEndOfStream, t.stream.GenTextPos())
		}
		b := t.stream.curr()
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			t.stream.Advance(1)
			continue
		}
		switch b {
		case '\'', '"':
			quote = b
			t.stream.Advance(1)
		case '[':
			depth++
			t.stream.Advance(1)
		case ']':
			if depth > 0 {
				depth--
			}
			t.stream.Advance(1)
		case '>':
			t.stream.Advance(1)
			if depth == 0 {
				return nil
			}
		default:
			t.stream.Advance(1)
		}
	}
}

// skipParameterEntityRef discards a top-level "%name;" reference inside
// the internal subset (spec §4.2.2: "any other ... %PE; form is silently
// skipped").
func (t *Tokenizer) skipParameterEntityRef() error {
	if err := t.stream.ConsumeByte('%'); err != nil {
		return err
	}
	if _, err := t.stream.ConsumeName(); err != nil {
		return err
	}
	return t.stream.ConsumeByte(';')
}

// parseElementStart parses "<" QName, used both for the root element
// (dispatched from the prolog) and for nested elements (dispatched from
// content). It leaves the Tokenizer mid start-tag (inTag = true); the
// attribute list and terminator are consumed on subsequent pulls.
func (t *Tokenizer) parseElementStart() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeByte('<'); err != nil {
		return Token{}, err
	}
	prefix, local, err := t.stream.ConsumeQName()
	if err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	t.inTag = true
	return newElementStartToken(prefix, local, span), nil
}

// parseAttribute parses one "QName = QuotedValue" pair inside a start tag.
// A '<' or a non-Char code point inside the value is rejected by
// Stream.ConsumeQuotedString; references are preserved as raw bytes (spec
// §4.2.3) and are never decoded here.
func (t *Tokenizer) parseAttribute() (Token, bool, error) {
	start := t.stream.pos
	prefix, local, err := t.stream.ConsumeQName()
	if err != nil {
		return Token{}, false, err
	}
	if err := t.stream.ConsumeEq(); err != nil {
		return Token{}, false, err
	}
	_, value, err := t.stream.ConsumeQuotedString()
	if err != nil {
		return Token{}, false, err
	}
	span := t.stream.Span(start, t.stream.pos)
	return newAttributeToken(prefix, local, value, span), true, nil
}

// parseEndTag parses "</" QName (space)? ">" and decrements depth.
func (t *Tokenizer) parseEndTag() (Token, error) {
	start := t.stream.pos
	if err := t.stream.ConsumeBytes([]byte("</")); err != nil {
		return Token{}, err
	}
	prefix, local, err := t.stream.ConsumeQName()
	if err != nil {
		return Token{}, err
	}
	t.stream.SkipSpaces()
	if err := t.stream.ConsumeByte('>'); err != nil {
		return Token{}, err
	}
	span := t.stream.Span(start, t.stream.pos)
	t.depth--
	if t.depth == 0 {
		t.state = stateAfterRoot
	}
	return newElementEndToken(ElementEndClose, prefix, local, span), nil
}
