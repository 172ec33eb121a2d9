package xmltok

import (
	"io"
	"testing"
)

func nextOrFatal(t *testing.T, tok *Tokenizer) Token {
	t.Helper()
	got, err := tok.Next()
	if err != nil {
		t.Fatalf("Next() returned unexpected error: %v", err)
	}
	return got
}

func expectError(t *testing.T, tok *Tokenizer, want ErrorKind) *Error {
	t.Helper()
	_, err := tok.Next()
	xerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Next() = %v (%T), want *Error", err, err)
	}
	if xerr.Kind != want {
		t.Fatalf("Kind = %v, want %v", xerr.Kind, want)
	}
	return xerr
}

func expectFinished(t *testing.T, tok *Tokenizer) {
	t.Helper()
	if _, err := tok.Next(); err != io.EOF {
		t.Fatalf("Next() = %v, want io.EOF", err)
	}
}

// S1 from spec §8.
func TestTokenizerEmptyElementWithAttribute(t *testing.T) {
	tok := NewTokenizer([]byte(`<tagname name='value'/>`))

	start := nextOrFatal(t, tok)
	if start.Kind() != TokenElementStart {
		t.Fatalf("Kind() = %v, want ElementStart", start.Kind())
	}
	if start.Local().AsStr() != "tagname" || !start.Prefix().IsEmpty() {
		t.Fatalf("prefix/local = %q/%q, want \"\"/\"tagname\"", start.Prefix().AsStr(), start.Local().AsStr())
	}
	if s, e := start.Span().Range(); s != 0 || e != 8 {
		t.Fatalf("ElementStart span = [%d,%d), want [0,8)", s, e)
	}

	attr := nextOrFatal(t, tok)
	if attr.Kind() != TokenAttribute {
		t.Fatalf("Kind() = %v, want Attribute", attr.Kind())
	}
	if attr.Local().AsStr() != "name" || attr.Value().AsStr() != "value" {
		t.Fatalf("name/value = %q/%q, want name/value", attr.Local().AsStr(), attr.Value().AsStr())
	}
	if s, e := attr.Span().Range(); s != 9 || e != 21 {
		t.Fatalf("Attribute span = [%d,%d), want [9,21)", s, e)
	}

	end := nextOrFatal(t, tok)
	if end.Kind() != TokenElementEnd || end.End() != ElementEndEmpty {
		t.Fatalf("end = %v/%v, want ElementEnd/Empty", end.Kind(), end.End())
	}
	if s, e := end.Span().Range(); s != 21 || e != 23 {
		t.Fatalf("ElementEnd span = [%d,%d), want [21,23)", s, e)
	}

	expectFinished(t, tok)
}

// S2 from spec §8.
func TestTokenizerQualifiedNames(t *testing.T) {
	tok := NewTokenizer([]byte(`<a:b c:d="1"></a:b>`))

	start := nextOrFatal(t, tok)
	if start.Prefix().AsStr() != "a" || start.Local().AsStr() != "b" {
		t.Fatalf("start prefix/local = %q/%q, want a/b", start.Prefix().AsStr(), start.Local().AsStr())
	}

	attr := nextOrFatal(t, tok)
	if attr.Prefix().AsStr() != "c" || attr.Local().AsStr() != "d" || attr.Value().AsStr() != "1" {
		t.Fatalf("attr = %q:%q=%q, want c:d=1", attr.Prefix().AsStr(), attr.Local().AsStr(), attr.Value().AsStr())
	}

	open := nextOrFatal(t, tok)
	if open.Kind() != TokenElementEnd || open.End() != ElementEndOpen {
		t.Fatalf("open = %v/%v, want ElementEnd/Open", open.Kind(), open.End())
	}
	if depth := tok.Depth(); depth != 1 {
		t.Fatalf("Depth() = %d, want 1", depth)
	}

	close_ := nextOrFatal(t, tok)
	if close_.Kind() != TokenElementEnd || close_.End() != ElementEndClose {
		t.Fatalf("close = %v/%v, want ElementEnd/Close", close_.Kind(), close_.End())
	}
	if close_.Prefix().AsStr() != "a" || close_.Local().AsStr() != "b" {
		t.Fatalf("close name = %q:%q, want a:b", close_.Prefix().AsStr(), close_.Local().AsStr())
	}
	if depth := tok.Depth(); depth != 0 {
		t.Fatalf("Depth() = %d, want 0", depth)
	}

	expectFinished(t, tok)
}

// S3 from spec §8: comment body may not end with "--->".
func TestTokenizerCommentEndingInTripleDash(t *testing.T) {
	tok := NewTokenizer([]byte(`<!--a---><x/>`))
	expectError(t, tok, ErrInvalidChar)
}

func TestTokenizerCommentContainingDoubleDash(t *testing.T) {
	tok := NewTokenizer([]byte(`<!--a--b--><x/>`))
	expectError(t, tok, ErrInvalidChar)
}

func TestTokenizerOrdinaryComment(t *testing.T) {
	tok := NewTokenizer([]byte(`<!-- hello -world --><x/>`))
	c := nextOrFatal(t, tok)
	if c.Kind() != TokenComment || c.Text().AsStr() != " hello -world " {
		t.Fatalf("comment text = %q, want %q", c.Text().AsStr(), " hello -world ")
	}
}

// S4 from spec §8: declaration, entity-only internal DTD, root.
func TestTokenizerDeclarationDtdEntityRoot(t *testing.T) {
	tok := NewTokenizer([]byte(`<?xml version="1.0"?><!DOCTYPE n [<!ENTITY e "v">]><r/>`))

	decl := nextOrFatal(t, tok)
	if decl.Kind() != TokenDeclaration || decl.Version().AsStr() != "1.0" {
		t.Fatalf("decl = %v/%q, want Declaration/1.0", decl.Kind(), decl.Version().AsStr())
	}
	if _, ok := decl.Encoding(); ok {
		t.Fatalf("Encoding() ok = true, want false")
	}

	dtdStart := nextOrFatal(t, tok)
	if dtdStart.Kind() != TokenDtdStart || dtdStart.Name().AsStr() != "n" {
		t.Fatalf("dtdStart = %v/%q, want DtdStart/n", dtdStart.Kind(), dtdStart.Name().AsStr())
	}
	if _, ok := dtdStart.ExternalID(); ok {
		t.Fatalf("ExternalID() ok = true, want false")
	}

	entity := nextOrFatal(t, tok)
	if entity.Kind() != TokenEntityDeclaration || entity.EntityName().AsStr() != "e" || entity.Definition().AsStr() != "v" {
		t.Fatalf("entity = %v/%q=%q, want EntityDeclaration/e=v", entity.Kind(), entity.EntityName().AsStr(), entity.Definition().AsStr())
	}

	dtdEnd := nextOrFatal(t, tok)
	if dtdEnd.Kind() != TokenDtdEnd {
		t.Fatalf("dtdEnd = %v, want DtdEnd", dtdEnd.Kind())
	}

	root := nextOrFatal(t, tok)
	if root.Kind() != TokenElementStart || root.Local().AsStr() != "r" {
		t.Fatalf("root = %v/%q, want ElementStart/r", root.Kind(), root.Local().AsStr())
	}

	empty := nextOrFatal(t, tok)
	if empty.Kind() != TokenElementEnd || empty.End() != ElementEndEmpty {
		t.Fatalf("empty = %v/%v, want ElementEnd/Empty", empty.Kind(), empty.End())
	}

	expectFinished(t, tok)
}

// S5 from spec §8: "]>" is legal text.
func TestTokenizerBracketGreaterIsLegalText(t *testing.T) {
	tok := NewTokenizer([]byte(`<r>text]>more</r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	text := nextOrFatal(t, tok)
	if text.Kind() != TokenText || text.Text().AsStr() != "text]>more" {
		t.Fatalf("text = %v/%q, want Text/%q", text.Kind(), text.Text().AsStr(), "text]>more")
	}
}

// S6 from spec §8: "]]>" is forbidden inside text.
func TestTokenizerDoubleBracketGreaterForbiddenInText(t *testing.T) {
	tok := NewTokenizer([]byte(`<r>a]]>b</r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	expectError(t, tok, ErrInvalidCharacterData)
}

// S7 from spec §8: a missing space between attributes is an error.
func TestTokenizerMissingSpaceBetweenAttributes(t *testing.T) {
	tok := NewTokenizer([]byte(`<a b="1"c="2"/>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // Attribute b=1
	expectError(t, tok, ErrInvalidSpace)
}

func TestTokenizerCdata(t *testing.T) {
	tok := NewTokenizer([]byte(`<r><![CDATA[a]]b]]></r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	cd := nextOrFatal(t, tok)
	if cd.Kind() != TokenCdata || cd.Text().AsStr() != "a]]b" {
		t.Fatalf("cdata = %v/%q, want Cdata/%q", cd.Kind(), cd.Text().AsStr(), "a]]b")
	}
}

func TestTokenizerProcessingInstruction(t *testing.T) {
	tok := NewTokenizer([]byte(`<r><?target some content?></r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	pi := nextOrFatal(t, tok)
	if pi.Kind() != TokenProcessingInstruction || pi.Target().AsStr() != "target" {
		t.Fatalf("pi = %v/%q, want ProcessingInstruction/target", pi.Kind(), pi.Target().AsStr())
	}
	content, ok := pi.Content()
	if !ok || content.AsStr() != "some content" {
		t.Fatalf("pi content = %q/%v, want %q/true", content.AsStr(), ok, "some content")
	}
}

func TestTokenizerEmptyProcessingInstruction(t *testing.T) {
	tok := NewTokenizer([]byte(`<r><?target?></r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	pi := nextOrFatal(t, tok)
	if _, ok := pi.Content(); ok {
		t.Fatalf("Content() ok = true, want false")
	}
}

func TestTokenizerXmlTargetRejectedAfterOffsetZero(t *testing.T) {
	tok := NewTokenizer([]byte(`<r><?xml version="1.0"?></r>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Open
	expectError(t, tok, ErrXmlDeclExists)
}

func TestTokenizerSecondRootIsUnknownToken(t *testing.T) {
	tok := NewTokenizer([]byte(`<a/><b/>`))
	nextOrFatal(t, tok) // ElementStart a
	nextOrFatal(t, tok) // ElementEnd Empty a -> AfterRoot
	expectError(t, tok, ErrUnknownToken)
}

func TestTokenizerDeclarationMustBeFirst(t *testing.T) {
	tok := NewTokenizer([]byte(` <?xml version="1.0"?><r/>`))
	// leading space means the declaration-shaped text is no longer
	// recognized at Start; it surfaces as an ordinary (disallowed) PI.
	expectError(t, tok, ErrXmlDeclExists)
}

func TestTokenizerUnknownDeclVersion(t *testing.T) {
	tok := NewTokenizer([]byte(`<?xml version="2.0"?><r/>`))
	expectError(t, tok, ErrUnknownXmlDeclVersion)
}

func TestTokenizerDuplicateDoctype(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE a><!DOCTYPE b><r/>`))
	nextOrFatal(t, tok) // EmptyDtd a
	expectError(t, tok, ErrDoctypeExists)
}

func TestTokenizerDoctypeWithSystemExternalID(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE a SYSTEM "a.dtd"><r/>`))
	dtd := nextOrFatal(t, tok)
	if dtd.Kind() != TokenEmptyDtd {
		t.Fatalf("Kind() = %v, want EmptyDtd", dtd.Kind())
	}
	ext, ok := dtd.ExternalID()
	if !ok || ext.AsStr() != `SYSTEM "a.dtd"` {
		t.Fatalf("ExternalID = %q/%v, want %q/true", ext.AsStr(), ok, `SYSTEM "a.dtd"`)
	}
}

func TestTokenizerDoctypeSkipsOtherDeclarations(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE a [<!ELEMENT a (#PCDATA)><!ENTITY e "v">]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	entity := nextOrFatal(t, tok)
	if entity.Kind() != TokenEntityDeclaration || entity.EntityName().AsStr() != "e" {
		t.Fatalf("expected EntityDeclaration e after skipped ELEMENT decl, got %v/%q", entity.Kind(), entity.EntityName().AsStr())
	}
	nextOrFatal(t, tok) // DtdEnd
	nextOrFatal(t, tok) // ElementStart r
	nextOrFatal(t, tok) // ElementEnd Empty
	expectFinished(t, tok)
}

func TestTokenizerDtdEndAllowsSpaceBeforeBracket(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE a [<!ENTITY e "v">] ><r/>`))
	nextOrFatal(t, tok) // DtdStart
	nextOrFatal(t, tok) // EntityDeclaration
	end := nextOrFatal(t, tok)
	if end.Kind() != TokenDtdEnd {
		t.Fatalf("Kind() = %v, want DtdEnd", end.Kind())
	}
}

func TestTokenizerParameterEntityDeclarationSkippedOpaquely(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE a [<!ENTITY % pe "x"><!ENTITY e "v">]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	entity := nextOrFatal(t, tok)
	if entity.Kind() != TokenEntityDeclaration || entity.EntityName().AsStr() != "e" {
		t.Fatalf("expected general entity e, got %v/%q", entity.Kind(), entity.EntityName().AsStr())
	}
}

func TestTokenizerMalformedEntityNameIsError(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE d [<!ENTITY 1x "v">]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	expectError(t, tok, ErrInvalidName)
}

func TestTokenizerEntityMissingSpaceBeforeValueIsError(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE d [<!ENTITY e"v">]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	expectError(t, tok, ErrInvalidSpace)
}

func TestTokenizerEntityUnquotedValueIsError(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE d [<!ENTITY e v>]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	expectError(t, tok, ErrInvalidQuote)
}

func TestTokenizerExternalEntityStillSkippedOpaquely(t *testing.T) {
	tok := NewTokenizer([]byte(`<!DOCTYPE d [<!ENTITY e SYSTEM "e.ent"><!ENTITY f "v">]><r/>`))
	nextOrFatal(t, tok) // DtdStart
	entity := nextOrFatal(t, tok)
	if entity.Kind() != TokenEntityDeclaration || entity.EntityName().AsStr() != "f" {
		t.Fatalf("expected general entity f after skipped external entity, got %v/%q", entity.Kind(), entity.EntityName().AsStr())
	}
}

func TestTokenizerAfterRootAllowsCommentsAndPIs(t *testing.T) {
	tok := NewTokenizer([]byte(`<r/><!-- done --><?post?>`))
	nextOrFatal(t, tok) // ElementStart
	nextOrFatal(t, tok) // ElementEnd Empty
	c := nextOrFatal(t, tok)
	if c.Kind() != TokenComment {
		t.Fatalf("Kind() = %v, want Comment", c.Kind())
	}
	pi := nextOrFatal(t, tok)
	if pi.Kind() != TokenProcessingInstruction {
		t.Fatalf("Kind() = %v, want ProcessingInstruction", pi.Kind())
	}
	expectFinished(t, tok)
}

func TestTokenizerNestedElements(t *testing.T) {
	tok := NewTokenizer([]byte(`<a><b><c/></b></a>`))
	wantKinds := []TokenKind{
		TokenElementStart, TokenElementEnd, // <a>
		TokenElementStart, TokenElementEnd, // <b>
		TokenElementStart, TokenElementEnd, // <c/>
		TokenElementEnd,                    // </b>
		TokenElementEnd,                    // </a>
	}
	for i, want := range wantKinds {
		got := nextOrFatal(t, tok)
		if got.Kind() != want {
			t.Fatalf("token %d: Kind() = %v, want %v", i, got.Kind(), want)
		}
	}
	expectFinished(t, tok)
}

// Property 8: deep nesting must not overflow the host stack. The state
// machine is iterative (spec §4.2.5), so this is really a smoke test that
// nothing regresses to recursion.
func TestTokenizerDeepNestingDoesNotOverflow(t *testing.T) {
	const depth = 20000
	input := make([]byte, 0, depth*7)
	for i := 0; i < depth; i++ {
		input = append(input, "<a>"...)
	}
	for i := 0; i < depth; i++ {
		input = append(input, "</a>"...)
	}
	tok := NewTokenizer(input)
	count := 0
	for {
		_, err := tok.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error at token %d: %v", count, err)
		}
		count++
	}
	// Each open tag yields ElementStart + ElementEnd{Open}; each close tag
	// yields one ElementEnd{Close}.
	if want := depth*3; count != want {
		t.Fatalf("token count = %d, want %d", count, want)
	}
}

func TestTokenizerFragmentMode(t *testing.T) {
	tok := NewFragmentTokenizer([]byte(`text<b/>more`), "body")
	if !tok.IsFragment() || tok.FragmentName() != "body" || tok.Depth() != 1 {
		t.Fatalf("fragment setup wrong: isFragment=%v name=%q depth=%d", tok.IsFragment(), tok.FragmentName(), tok.Depth())
	}

	text := nextOrFatal(t, tok)
	if text.Kind() != TokenText || text.Text().AsStr() != "text" {
		t.Fatalf("text = %v/%q, want Text/text", text.Kind(), text.Text().AsStr())
	}
	start := nextOrFatal(t, tok)
	if start.Kind() != TokenElementStart || start.Local().AsStr() != "b" {
		t.Fatalf("start = %v/%q, want ElementStart/b", start.Kind(), start.Local().AsStr())
	}
	empty := nextOrFatal(t, tok)
	if empty.Kind() != TokenElementEnd || empty.End() != ElementEndEmpty {
		t.Fatalf("empty = %v/%v, want ElementEnd/Empty", empty.Kind(), empty.End())
	}
	more := nextOrFatal(t, tok)
	if more.Kind() != TokenText || more.Text().AsStr() != "more" {
		t.Fatalf("more = %v/%q, want Text/more", more.Kind(), more.Text().AsStr())
	}
	expectFinished(t, tok)
}

func TestTokenizerFragmentModeRejectsDeclaration(t *testing.T) {
	// A fragment body has no prolog: a literal "<?xml ...?>" inside it is
	// just a disallowed PI target, never a declaration.
	tok := NewFragmentTokenizer([]byte(`<?xml version="1.0"?>`), "body")
	expectError(t, tok, ErrXmlDeclExists)
}

func TestTokenizerErrorIsTerminal(t *testing.T) {
	tok := NewTokenizer([]byte(`<a b="1"c="2"/>`))
	nextOrFatal(t, tok)
	nextOrFatal(t, tok)
	if _, err := tok.Next(); err == nil {
		t.Fatalf("expected an error")
	}
	if _, err := tok.Next(); err != io.EOF {
		t.Fatalf("second call after error = %v, want io.EOF", err)
	}
}

func TestTokenizerNodesLimit(t *testing.T) {
	tok := NewTokenizer([]byte(`<a><b/><c/></a>`), WithNodesLimit(2))
	nextOrFatal(t, tok) // ElementStart a (1)
	nextOrFatal(t, tok) // ElementEnd Open a (2)
	expectError(t, tok, ErrNodesLimitReached)
}

func TestTokenizerMaxDepth(t *testing.T) {
	tok := NewTokenizer([]byte(`<a><b><c/></b></a>`), WithMaxDepth(1))
	nextOrFatal(t, tok) // ElementStart a
	nextOrFatal(t, tok) // ElementEnd Open a, depth -> 1, within limit
	nextOrFatal(t, tok) // ElementStart b
	expectError(t, tok, ErrNodesLimitReached)
}

func TestTokenizerAttributeValueReferencesPreservedRaw(t *testing.T) {
	tok := NewTokenizer([]byte(`<a b="&amp;x"/>`))
	nextOrFatal(t, tok) // ElementStart
	attr := nextOrFatal(t, tok)
	if attr.Value().AsStr() != "&amp;x" {
		t.Fatalf("Value() = %q, want %q (raw, undecoded)", attr.Value().AsStr(), "&amp;x")
	}
}

func TestTokenizerAttributeValueCannotContainLessThan(t *testing.T) {
	tok := NewTokenizer([]byte(`<a b="<"/>`))
	nextOrFatal(t, tok) // ElementStart
	expectError(t, tok, ErrInvalidChar)
}

func TestTokenizerBOMIsStrippedButCounted(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<r/>`)...)
	tok := NewTokenizer(input)
	start := nextOrFatal(t, tok)
	if s, _ := start.Span().Range(); s != 3 {
		t.Fatalf("ElementStart span start = %d, want 3 (BOM counted)", s)
	}
}
