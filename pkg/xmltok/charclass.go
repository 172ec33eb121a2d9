package xmltok

import (
	"unicode"
	"unicode/utf8"
)

// isXMLChar reports whether r is a valid XML 1.0 Char (W3C XML 1.0 §2.2).
func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

var nameStartTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x003A, Hi: 0x003A, Stride: 1}, // ':'
		{Lo: 0x0041, Hi: 0x005A, Stride: 1}, // 'A'-'Z'
		{Lo: 0x005F, Hi: 0x005F, Stride: 1}, // '_'
		{Lo: 0x0061, Hi: 0x007A, Stride: 1}, // 'a'-'z'
		{Lo: 0x00C0, Hi: 0x00D6, Stride: 1},
		{Lo: 0x00D8, Hi: 0x00F6, Stride: 1},
		{Lo: 0x00F8, Hi: 0x02FF, Stride: 1},
		{Lo: 0x0370, Hi: 0x037D, Stride: 1},
		{Lo: 0x037F, Hi: 0x1FFF, Stride: 1},
		{Lo: 0x200C, Hi: 0x200D, Stride: 1},
		{Lo: 0x2070, Hi: 0x218F, Stride: 1},
		{Lo: 0x2C00, Hi: 0x2FEF, Stride: 1},
		{Lo: 0x3001, Hi: 0xD7FF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFDCF, Stride: 1},
		{Lo: 0xFDF0, Hi: 0xFFFD, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0xEFFFF, Stride: 1},
	},
}

var nameCharExtraTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x002D, Hi: 0x002E, Stride: 1}, // '-', '.'
		{Lo: 0x0030, Hi: 0x0039, Stride: 1}, // '0'-'9'
		{Lo: 0x00B7, Hi: 0x00B7, Stride: 1},
		{Lo: 0x0300, Hi: 0x036F, Stride: 1},
		{Lo: 0x203F, Hi: 0x2040, Stride: 1},
	},
}

// isNameStartChar reports whether r may begin an XML Name.
func isNameStartChar(r rune) bool {
	return unicode.Is(nameStartTable, r)
}

// isNameChar reports whether r may continue an XML Name after its first
// character.
func isNameChar(r rune) bool {
	return unicode.Is(nameStartTable, r) || unicode.Is(nameCharExtraTable, r)
}

// isWhitespace reports whether b is ASCII XML whitespace (space, tab, CR,
// LF). Non-ASCII whitespace is never treated as XML whitespace.
func isWhitespace(b byte) bool {
	switch b {
	case 0x20, 0x09, 0x0A, 0x0D:
		return true
	default:
		return false
	}
}

// decodeRune decodes the rune at data[0] and reports its byte width. Invalid
// UTF-8 is reported via ok=false so callers can surface InvalidUtf8 instead
// of silently substituting utf8.RuneError.
func decodeRune(data []byte) (r rune, size int, ok bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	r, size = utf8.DecodeRune(data)
	if r == utf8.RuneError && size <= 1 {
		return 0, size, false
	}
	return r, size, true
}
