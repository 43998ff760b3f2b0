package dtd

import (
	"fmt"
	"strings"
)

// loader parses one DTD subset (external or internal) into a DocType's
// shared general-entity table. Parameter entities are scoped to a single
// loader — they never survive past the subset that declared them, matching
// dtd->PE_table in original_source/xml/doctype.c.
type loader struct {
	c  *cursor
	pe map[string]string
	dt *DocType
}

func parseSubset(dt *DocType, text string) error {
	l := &loader{c: newCursor([]byte(text)), pe: map[string]string{}, dt: dt}
	return l.run()
}

// run is dtd_parse: skip whitespace, expand parameter entities, skip
// comments, parse entity declarations, and skip anything else up to '>'.
func (l *loader) run() error {
	for {
		switch l.c.ch {
		case 0:
			return nil
		case ' ', '\t', '\r', '\n':
			l.c.advance()
		case '%':
			if err := l.readParameterEntity(); err != nil {
				return fmt.Errorf("DTD error: expected parameter entity: %w", err)
			}
		case '<':
			matched := false
			if l.c.advance() == '!' {
				switch l.c.advance() {
				case '-':
					if err := l.ignoreComment(); err != nil {
						return fmt.Errorf("DTD error: ignoring comment failed: %w", err)
					}
					matched = true
				case 'E':
					if l.c.advance() == 'N' {
						if err := l.readEntityDecl(); err != nil {
							return fmt.Errorf("DTD error: expected entity decl: %w", err)
						}
						matched = true
					}
				}
			}
			if !matched {
				if err := l.ignoreElement(); err != nil {
					return fmt.Errorf("DTD error: ignoring element failed: %w", err)
				}
			}
		default:
			return fmt.Errorf("DTD error: unexpected char %q", l.c.ch)
		}
	}
}

func (l *loader) ignoreElement() error {
	for l.c.ch != '>' && l.c.ch != 0 {
		l.c.advance()
	}
	if l.c.ch == 0 {
		return errUnexpectedEOF
	}
	l.c.advance()
	return nil
}

// ignoreComment is dtd_ignore_comment: entered with l.c.ch holding the
// first '-' of "<!--" already read by run's dispatch switch.
func (l *loader) ignoreComment() error {
	if l.c.advance() != '-' {
		return errInvalidToken
	}
	for {
		if l.c.advance() == '-' {
			if l.c.advance() == '-' {
				if l.c.advance() != '>' {
					return errInvalidToken
				}
				l.c.advance()
				return nil
			}
		}
		if l.c.ch == 0 {
			return errInvalidToken
		}
	}
}

func (l *loader) readParameterEntity() error {
	l.c.advance() // consume '%'
	var name strings.Builder
loop:
	for {
		switch l.c.ch {
		case ';':
			break loop
		case 0:
			return errUnexpectedEOF
		default:
			name.WriteByte(l.c.ch)
		}
		l.c.advance()
	}
	value, ok := l.pe[name.String()]
	if !ok {
		return fmt.Errorf("parameter entity %q not declared", name.String())
	}
	l.c.pushStream([]byte(value))
	return nil
}

// readEntityDecl is dtd_read_EntityDecl, entered just after "<!EN" has been
// consumed by run's dispatch.
func (l *loader) readEntityDecl() error {
	if err := l.expect("TITY"); err != nil {
		return err
	}
	l.c.advance()
	l.skipS()

	isParam := false
	if l.c.ch == '%' {
		l.c.advance()
		l.skipS()
		isParam = true
	}

	name, err := l.readName()
	if err != nil {
		return err
	}
	if name == "" {
		return errInvalidToken
	}
	l.skipS()

	var value string
	switch l.c.ch {
	case '\'', '"':
		value, err = l.readValue()
		if err != nil {
			return err
		}
		l.skipS()
	case 'S':
		// SYSTEM entities are unresolvable without a base URI and are
		// dropped — but the grammar is still consumed up to '>' so the
		// DTD cursor does not desynchronize (SPEC_FULL.md §12 item 3).
		if _, err := l.readSystemLiteral(); err != nil {
			return err
		}
		return l.ignoreElement()
	case 'P':
		publicID, _, err := l.readPublicLiteral()
		if err != nil {
			return err
		}
		l.skipS()
		if !isParam && l.c.ch == 'N' {
			// NDATA: unparsed entity, dropped.
			return l.ignoreElement()
		}
		urn := ComputeURN(publicID)
		data, err := loadURN(urn)
		if err != nil {
			return err
		}
		value = data
	default:
		return errInvalidToken
	}

	if l.c.ch != '>' {
		return errInvalidToken
	}
	l.c.advance()

	if isParam {
		l.pe[name] = value
	} else {
		l.dt.entities[name] = value
	}
	return nil
}

func (l *loader) expect(s string) error {
	for i := 0; i < len(s); i++ {
		if l.c.advance() != s[i] {
			return errInvalidToken
		}
	}
	return nil
}

func (l *loader) skipS() {
	for isSpace(l.c.ch) {
		l.c.advance()
	}
}

func (l *loader) readName() (string, error) {
	var b strings.Builder
	for isNameChar(l.c.ch) {
		b.WriteByte(l.c.ch)
		l.c.advance()
	}
	return b.String(), nil
}

func (l *loader) readSystemLiteral() (string, error) {
	if err := l.expect("YSTEM"); err != nil {
		return "", err
	}
	l.c.advance()
	l.skipS()
	return l.readValue()
}

func (l *loader) readPublicLiteral() (publicID, systemID string, err error) {
	if err := l.expect("UBLIC"); err != nil {
		return "", "", err
	}
	l.c.advance()
	l.skipS()
	publicID, err = l.readValue()
	if err != nil {
		return "", "", err
	}
	l.skipS()
	systemID, err = l.readValue()
	if err != nil {
		return "", "", err
	}
	return publicID, systemID, nil
}

// readValue is dtd_read_value: a quoted literal where '&' copies a named
// entity reference through literally (DTD context never expands named
// entities, only parameter entities and character references) and '%'
// expands a parameter entity in place.
func (l *loader) readValue() (string, error) {
	delim := l.c.ch
	if delim != '\'' && delim != '"' {
		return "", errInvalidToken
	}
	l.c.advance()
	var b strings.Builder
	for {
		if l.c.ch == delim {
			l.c.advance()
			return b.String(), nil
		}
		switch l.c.ch {
		case 0:
			return "", errInvalidToken
		case '&':
			if err := l.readEntity(&b); err != nil {
				return "", err
			}
		case '%':
			if err := l.readParameterEntity(); err != nil {
				return "", err
			}
		default:
			b.WriteByte(l.c.ch)
			l.c.advance()
		}
	}
}

// readEntity is dtd_read_entity: copies "&name;" through literally, or
// expands a numeric character reference.
func (l *loader) readEntity(b *strings.Builder) error {
	if l.c.advance() == '#' {
		return l.readCharRef(b)
	}
	var name strings.Builder
loop:
	for {
		switch l.c.ch {
		case ';':
			break loop
		case 0:
			return errUnexpectedEOF
		default:
			name.WriteByte(l.c.ch)
		}
		l.c.advance()
	}
	b.WriteByte('&')
	b.WriteString(name.String())
	b.WriteByte(';')
	l.c.advance()
	return nil
}

func (l *loader) readCharRef(b *strings.Builder) error {
	var code int32
	if l.c.advance() == 'x' {
		if l.c.advance() == ';' {
			return errInvalidToken
		}
	hex:
		for {
			switch {
			case l.c.ch >= '0' && l.c.ch <= '9':
				code = code*16 + int32(l.c.ch-'0')
			case l.c.ch >= 'a' && l.c.ch <= 'f':
				code = code*16 + int32(l.c.ch-'a') + 10
			case l.c.ch >= 'A' && l.c.ch <= 'F':
				code = code*16 + int32(l.c.ch-'A') + 10
			default:
				break hex
			}
			l.c.advance()
		}
	} else {
		if l.c.ch == ';' {
			return errInvalidToken
		}
		for l.c.ch >= '0' && l.c.ch <= '9' {
			code = code*10 + int32(l.c.ch-'0')
			l.c.advance()
		}
	}
	if l.c.ch != ';' {
		return errInvalidToken
	}
	l.c.advance()
	b.WriteRune(rune(code))
	return nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isNameChar(c byte) bool {
	return c == '.' || c == '-' || c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
