package xmltok

// This file collects the unexported Token constructors used by the
// tokenizer state machine in tokenizer.go and parse.go. Token itself
// (tokenbuild.go's counterpart, token.go) exposes only read accessors —
// every variant is built here, close to the single place spec §3 assigns
// each field meaning.

func newDeclarationToken(version, encoding Span, hasEncoding, standalone, hasStandalone bool, span Span) Token {
	return Token{
		kind:          TokenDeclaration,
		span:          span,
		version:       version,
		encoding:      encoding,
		hasEncoding:   hasEncoding,
		standalone:    standalone,
		hasStandalone: hasStandalone,
	}
}

func newPIToken(target, content Span, hasContent bool, span Span) Token {
	return Token{
		kind:       TokenProcessingInstruction,
		span:       span,
		target:     target,
		content:    content,
		hasContent: hasContent,
	}
}

func newCommentToken(text, span Span) Token {
	return Token{kind: TokenComment, span: span, text: text}
}

func newDtdStartToken(name, externalID Span, hasExternalID bool, span Span) Token {
	return Token{
		kind:          TokenDtdStart,
		span:          span,
		name:          name,
		externalID:    externalID,
		hasExternalID: hasExternalID,
	}
}

func newEmptyDtdToken(name, externalID Span, hasExternalID bool, span Span) Token {
	return Token{
		kind:          TokenEmptyDtd,
		span:          span,
		name:          name,
		externalID:    externalID,
		hasExternalID: hasExternalID,
	}
}

func newEntityDeclToken(name, definition Span, span Span) Token {
	return Token{kind: TokenEntityDeclaration, span: span, entityName: name, definition: definition}
}

func newDtdEndToken(span Span) Token {
	return Token{kind: TokenDtdEnd, span: span}
}

func newElementStartToken(prefix, local Span, span Span) Token {
	return Token{kind: TokenElementStart, span: span, prefix: prefix, local: local}
}

func newAttributeToken(prefix, local, value Span, span Span) Token {
	return Token{kind: TokenAttribute, span: span, prefix: prefix, local: local, value: value}
}

func newElementEndToken(kind ElementEndKind, prefix, local Span, span Span) Token {
	return Token{kind: TokenElementEnd, span: span, prefix: prefix, local: local, endKind: kind}
}

func newTextToken(text Span) Token {
	return Token{kind: TokenText, span: text, text: text}
}

func newCdataToken(text, span Span) Token {
	return Token{kind: TokenCdata, span: span, text: text}
}
