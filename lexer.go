package xmltok

import (
	"strings"

	"github.com/hforge/goxml/internal/intern"
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// isNCNameChar is IS_NC_NAME_CHAR from original_source/xml/parser.c: a name
// character excluding ':', used for the prefix (or sole) run of a QName.
func isNCNameChar(c byte) bool {
	return c == '.' || c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isNameChar is IS_NAME_CHAR: a name character including ':', used for the
// local-name run after a QName's colon, and for generic Name productions
// (PI targets, DOCTYPE names).
func isNameChar(c byte) bool {
	return c == ':' || isNCNameChar(c)
}

// skipS consumes the S (whitespace) production.
func (p *Parser) skipS() {
	for isSpace(p.ch) {
		p.advance()
	}
}

// expect matches s one character at a time via advance, mirroring
// parser_read_string: it leaves p.ch on the last matched character. It
// assumes the current p.ch was already matched by the caller (e.g. a
// dispatching switch) and is not itself part of s.
func (p *Parser) expect(s string) bool {
	for i := 0; i < len(s); i++ {
		if p.advance() != s[i] {
			return false
		}
	}
	return true
}

// expectFull matches s starting at the current p.ch (unlike expect, which
// assumes the current character was already consumed elsewhere) and
// advances one past the last matched character, leaving p.ch on whatever
// follows the keyword.
func (p *Parser) expectFull(s string) bool {
	if len(s) == 0 || p.ch != s[0] {
		return false
	}
	for i := 1; i < len(s); i++ {
		if p.advance() != s[i] {
			return false
		}
	}
	p.advance()
	return true
}

// readQuotedLiteral reads a quoted literal with no entity expansion: used
// for SystemLiteral and PubidLiteral, which the XML grammar defines as
// raw quoted text.
func (p *Parser) readQuotedLiteral() (string, bool) {
	delim := p.ch
	if delim != '\'' && delim != '"' {
		return "", false
	}
	p.advance()

	var b strings.Builder
	for p.ch != delim {
		if p.ch == 0 {
			return "", false
		}
		b.WriteByte(p.ch)
		p.advance()
	}
	p.advance()
	return b.String(), true
}

// readName reads a generic (non-interned) Name production: used for PI
// targets and the DOCTYPE's root element name, neither of which needs
// pointer-comparable interning.
func (p *Parser) readName() string {
	var b strings.Builder
	for isNameChar(p.ch) {
		b.WriteByte(p.ch)
		p.advance()
	}
	return b.String()
}

// readQName reads a namespace-qualified name: a run of non-colon name
// characters, optionally followed by ':' and a second run. If no colon is
// present, the first run is the local name and the prefix is the empty
// Symbol. Both runs are interned, mirroring parser_read_QName.
func (p *Parser) readQName() (prefix, local Symbol, ok bool) {
	var first []byte
	for isNCNameChar(p.ch) {
		first = append(first, p.ch)
		p.advance()
	}
	if len(first) == 0 {
		return nil, nil, false
	}
	firstSym := p.interner.Intern(first)

	if p.ch != ':' {
		return intern.Empty, firstSym, true
	}
	p.advance()

	var second []byte
	for isNameChar(p.ch) {
		second = append(second, p.ch)
		p.advance()
	}
	if len(second) == 0 {
		return nil, nil, false
	}
	return firstSym, p.interner.Intern(second), true
}

// readEq reads the Eq production: S '=' S.
func (p *Parser) readEq() bool {
	p.skipS()
	if p.ch != '=' {
		return false
	}
	p.advance()
	p.skipS()
	return true
}

// readAttValue reads a quoted AttValue, expanding entity references. A
// literal '<' or NUL before the closing delimiter is an error (§4.4 of the
// design — a deliberate tightening over the grounding C, which does not
// special-case '<' inside attribute values).
func (p *Parser) readAttValue() (string, bool) {
	delim := p.ch
	if delim != '\'' && delim != '"' {
		return "", false
	}
	// A delimiter byte produced by an entity expansion (a stream pushed
	// while reading this value) is value text, not the closing quote.
	depth := len(p.streams)
	p.advance()

	var b strings.Builder
	for {
		if p.ch == delim && len(p.streams) <= depth {
			p.advance()
			return b.String(), true
		}
		switch p.ch {
		case 0, '<':
			return "", false
		case '&':
			if !p.readEntityRef(&b) {
				return "", false
			}
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

// builtinEntities is the default entity table from parser_initialize: note
// the asymmetry preserved from the grounding source — lt/amp route back
// through character-reference expansion (&#60;/&#38;), while gt/apos/quot
// are literal one-byte replacements, never re-expanded (SPEC_FULL.md §12
// item 2).
var builtinEntities = map[string]string{
	"lt":   "&#60;",
	"gt":   ">",
	"amp":  "&#38;",
	"apos": "'",
	"quot": "\"",
}

// readEntityRef reads an EntityRef or CharRef starting at '&' (p.ch == '&'
// on entry) and appends its expansion to buf. A named entity is resolved
// against the built-in table first, then the active DocType, and pushed as
// a virtual stream so its own content is lexed normally by the caller's
// loop; a character reference is decoded and appended directly.
func (p *Parser) readEntityRef(buf *strings.Builder) bool {
	if p.advance() == '#' {
		return p.readCharRef(buf)
	}

	var name []byte
nameLoop:
	for {
		switch p.ch {
		case ';':
			break nameLoop
		case 0:
			return false
		default:
			name = append(name, p.ch)
		}
		p.advance()
	}

	entityName := string(name)
	if value, ok := builtinEntities[entityName]; ok {
		p.pushStream([]byte(value))
		return true
	}
	if p.doctype != nil {
		if value, ok := p.doctype.EntityValue(entityName); ok {
			p.pushStream([]byte(value))
			return true
		}
	}
	return false
}

func (p *Parser) readCharRef(buf *strings.Builder) bool {
	var code int32
	if p.advance() == 'x' {
		if p.advance() == ';' {
			return false
		}
	hex:
		for {
			switch {
			case p.ch >= '0' && p.ch <= '9':
				code = code*16 + int32(p.ch-'0')
			case p.ch >= 'a' && p.ch <= 'f':
				code = code*16 + int32(p.ch-'a') + 10
			case p.ch >= 'A' && p.ch <= 'F':
				code = code*16 + int32(p.ch-'A') + 10
			default:
				break hex
			}
			p.advance()
		}
	} else {
		if p.ch == ';' {
			return false
		}
		for p.ch >= '0' && p.ch <= '9' {
			code = code*10 + int32(p.ch-'0')
			p.advance()
		}
	}
	if p.ch != ';' {
		return false
	}
	p.advance()
	buf.WriteRune(rune(code))
	return true
}
