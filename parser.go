// Package xmltok implements a namespace-aware, pull-style XML 1.0
// tokenizer: Next streams one typed Event per call instead of driving
// callbacks, and the tokenizer never buffers more of the document than one
// production at a time.
//
// Grounded throughout in original_source/xml/parser.c and its header,
// original_source/xml/parser.h — the C library this package ports — with
// structural idiom (the single dispatch loop, struct-of-slices parsing
// state) borrowed from the teacher, github.com/wilkmaciej/xml-streamer's
// parser.go, which this file replaces: that implementation streamed
// pre-built element trees over a channel on top of gosax; this one emits
// raw lexical events synchronously, the shape SPEC_FULL.md calls for.
package xmltok

import (
	"bufio"
	"io"
	"strings"

	"github.com/hforge/goxml/dtd"
	"github.com/hforge/goxml/internal/intern"
	"github.com/hforge/goxml/internal/pool"
)

// pendingAttr is a start-tag attribute before its namespace URI has been
// resolved; isNSDecl marks it as an xmlns/xmlns:* declaration, which is
// reported with URI "" even though its own prefix may resolve to something
// else (see DESIGN.md for why this departs from a literal
// reading of the grounding C).
type pendingAttr struct {
	prefix   Symbol
	name     Symbol
	value    string
	isNSDecl bool
}

// Parser tokenizes a single XML document. It is not safe for concurrent
// use — callers needing concurrent parses should use one Parser per
// goroutine, sharing only the process-wide interner and DTD catalog.
type Parser struct {
	src        byteSource
	ch         byte
	row, col   int
	srcStarted bool
	srcPrevNL  bool
	streams    []streamFrame

	interner *intern.Interner

	nsStack   []nsFrame
	defaultNS string

	tagStack []tagFrame

	pendingEnd bool
	endURI     string
	endName    Symbol

	// attrPool backs each start tag's attribute list: an Arp-style
	// auto-growing pool (SPEC_FULL.md §3's attr_pool state, §4.1/§4.5),
	// reused tag after tag instead of a fresh slice per call.
	attrPool  *pool.Pool[pendingAttr]
	attrCount int

	doctype *dtd.DocType

	eventRow, eventCol int
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithNamespace pre-binds prefix to uri before parsing begins, exactly as
// repeated parser_add_namespace calls do in the C library's parser_new.
func WithNamespace(prefix, uri string) Option {
	return func(p *Parser) {
		p.pushNamespace(p.interner.InternString(prefix), uri)
	}
}

// New creates a Parser over a fully-buffered in-memory document.
func New(data []byte, opts ...Option) *Parser {
	p := &Parser{src: &memSource{data: data}, interner: intern.Default, row: 1, col: 1, attrPool: pool.New[pendingAttr](nil)}
	p.init(opts)
	return p
}

// NewFromReader creates a Parser over a read-only byte stream.
func NewFromReader(r io.Reader, opts ...Option) *Parser {
	p := &Parser{src: &readerSource{r: bufio.NewReader(r)}, interner: intern.Default, row: 1, col: 1, attrPool: pool.New[pendingAttr](nil)}
	p.init(opts)
	return p
}

func (p *Parser) init(opts []Option) {
	// Built-in namespaces are pre-registered before any caller-supplied
	// binding, mirroring parser_new's two parser_add_namespace calls
	// (SPEC_FULL.md §12 item 1).
	p.pushNamespace(intern.Xml, "http://www.w3.org/XML/1998/namespace")
	p.pushNamespace(intern.Xmlns, "http://www.w3.org/2000/xmlns/")
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	p.skipBOM()
}

// skipBOM consumes a leading UTF-8 byte-order mark, if present. Like
// parser_read_BOM, this only has one byte of lookahead: a document that
// starts with 0xEF but is not actually BOM-prefixed is misparsed, a known
// limitation carried from the grounding source rather than fixed here. A
// complete BOM does not count toward the reported column: the byte after it
// is column 1.
func (p *Parser) skipBOM() {
	if p.ch == 0xEF {
		if p.advance() == 0xBB {
			if p.advance() == 0xBF {
				p.advance()
				p.col = 1
			}
		}
	}
}

// Next produces the next Event. Past end of document it returns an
// EventEndDocument event on every call; an EventError event means the
// document is not well-formed and Next should not be called again.
func (p *Parser) Next() *Event {
	p.eventRow, p.eventCol = p.row, p.col

	if p.pendingEnd {
		p.pendingEnd = false
		return &Event{Kind: EventEndElement, Row: p.eventRow, Column: p.eventCol, URI: p.endURI, Name: p.endName}
	}

	switch p.ch {
	case 0:
		if len(p.tagStack) > 0 {
			return p.fatal(ErrMissingEndTag)
		}
		return &Event{Kind: EventEndDocument, Row: p.eventRow, Column: p.eventCol}
	case '<':
		return p.readMarkup()
	default:
		return p.readContentEvent()
	}
}

func (p *Parser) fatal(kind ErrorKind) *Event {
	return &Event{Kind: EventError, Row: p.eventRow, Column: p.eventCol, Err: newError(kind, p.eventRow, p.eventCol)}
}

func (p *Parser) fatalf(kind ErrorKind, format string, args ...any) *Event {
	return &Event{Kind: EventError, Row: p.eventRow, Column: p.eventCol, Err: newErrorf(kind, p.eventRow, p.eventCol, format, args...)}
}

// readMarkup dispatches everything starting with '<', mirroring the
// top-level switch inside parser_next.
func (p *Parser) readMarkup() *Event {
	switch p.advance() {
	case '!':
		switch p.advance() {
		case '-':
			return p.readComment()
		case 'D':
			return p.readDoctypeDecl()
		case '[':
			return p.readCDATA()
		default:
			return p.fatal(ErrInvalidToken)
		}
	case '?':
		return p.readPIOrXMLDecl()
	case '/':
		return p.readEndTag()
	case 0:
		return p.fatal(ErrInvalidToken)
	default:
		return p.readStartTag()
	}
}

func (p *Parser) readContentEvent() *Event {
	var b strings.Builder
	for {
		switch p.ch {
		case 0, '<':
			return &Event{Kind: EventText, Row: p.eventRow, Column: p.eventCol, Text: b.String()}
		case '&':
			if !p.readEntityRef(&b) {
				return p.fatal(ErrBadEntity)
			}
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

func (p *Parser) readStartTag() *Event {
	prefix, local, ok := p.readQName()
	if !ok {
		return p.fatal(ErrInvalidToken)
	}

	p.attrCount = 0
	nsAdded := 0
	selfClosing := false

attrLoop:
	for {
		p.skipS()
		switch p.ch {
		case '/':
			if p.advance() != '>' {
				return p.fatal(ErrInvalidToken)
			}
			p.advance()
			selfClosing = true
			break attrLoop
		case '>':
			p.advance()
			break attrLoop
		case 0:
			return p.fatal(ErrInvalidToken)
		default:
			aPrefix, aName, ok := p.readQName()
			if !ok {
				return p.fatal(ErrInvalidToken)
			}
			if !p.readEq() {
				return p.fatal(ErrInvalidToken)
			}
			value, ok := p.readAttValue()
			if !ok {
				return p.fatal(ErrInvalidToken)
			}

			isNSDecl := false
			switch {
			case aPrefix == intern.Empty && aName == intern.Xmlns:
				p.pushNamespace(intern.Empty, value)
				nsAdded++
				isNSDecl = true
			case aPrefix == intern.Xmlns:
				p.pushNamespace(aName, value)
				nsAdded++
				isNSDecl = true
			}
			*p.attrPool.Index(p.attrCount) = pendingAttr{prefix: aPrefix, name: aName, value: value, isNSDecl: isNSDecl}
			p.attrCount++
		}
	}

	var tagURI string
	if prefix == intern.Empty {
		tagURI = p.defaultNS
	} else {
		uri, found := p.lookupNamespace(prefix)
		if !found {
			return p.fatal(ErrInvalidNamespace)
		}
		tagURI = uri
	}

	attrs := make([]Attribute, p.attrCount)
	for i := 0; i < p.attrCount; i++ {
		pa := p.attrPool.Index(i)
		uri := ""
		// Unprefixed attributes, and xmlns/xmlns:* declarations regardless
		// of their own prefix, are never placed in a namespace — the
		// latter departs from a literal reading of the grounding C's
		// built-in "xmlns" namespace, per the spec's own worked examples
		// (see DESIGN.md).
		if !pa.isNSDecl && pa.prefix != intern.Empty {
			u, found := p.lookupNamespace(pa.prefix)
			if !found {
				return p.fatal(ErrInvalidNamespace)
			}
			uri = u
		}
		attrs[i] = Attribute{URI: uri, Name: pa.name, Value: pa.value}
	}

	if selfClosing {
		if nsAdded > 0 {
			p.popNamespaces(nsAdded)
		}
		p.pendingEnd = true
		p.endURI = tagURI
		p.endName = local
	} else {
		p.tagStack = append(p.tagStack, tagFrame{uri: tagURI, name: local, nsCount: nsAdded})
	}

	return &Event{Kind: EventStartElement, Row: p.eventRow, Column: p.eventCol, URI: tagURI, Name: local, Attributes: attrs}
}

func (p *Parser) readEndTag() *Event {
	p.advance() // past '/'
	prefix, local, ok := p.readQName()
	if !ok {
		return p.fatal(ErrInvalidToken)
	}
	p.skipS()
	if p.ch != '>' {
		return p.fatal(ErrInvalidToken)
	}
	p.advance()

	var uri string
	if prefix == intern.Empty {
		uri = p.defaultNS
	} else {
		u, found := p.lookupNamespace(prefix)
		if !found {
			return p.fatal(ErrInvalidNamespace)
		}
		uri = u
	}

	if len(p.tagStack) == 0 {
		return p.fatal(ErrMismatchedTag)
	}
	top := p.tagStack[len(p.tagStack)-1]
	p.tagStack = p.tagStack[:len(p.tagStack)-1]
	if top.uri != uri || top.name != local {
		return p.fatal(ErrMismatchedTag)
	}
	p.popNamespaces(top.nsCount)

	return &Event{Kind: EventEndElement, Row: p.eventRow, Column: p.eventCol, URI: uri, Name: local}
}

// readComment is entered with p.ch holding the first '-' of "<!--". An
// XML comment may not contain "--" anywhere but its terminator, the same
// rule dtd's ignoreComment enforces.
func (p *Parser) readComment() *Event {
	if p.advance() != '-' {
		return p.fatal(ErrInvalidToken)
	}
	p.advance()

	var b strings.Builder
	for {
		switch p.ch {
		case 0:
			return p.fatal(ErrInvalidToken)
		case '-':
			if p.advance() == '-' {
				if p.advance() != '>' {
					return p.fatal(ErrInvalidToken)
				}
				p.advance()
				return &Event{Kind: EventComment, Row: p.eventRow, Column: p.eventCol, Text: b.String()}
			}
			return p.fatal(ErrInvalidToken)
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

// readCDATA is entered with p.ch holding the '[' of "<![CDATA[".
func (p *Parser) readCDATA() *Event {
	if !p.expect("CDATA[") {
		return p.fatal(ErrInvalidToken)
	}
	p.advance()

	var b strings.Builder
	for {
		switch p.ch {
		case 0:
			return p.fatal(ErrInvalidToken)
		case ']':
			if p.advance() == ']' {
				if p.advance() == '>' {
					p.advance()
					return &Event{Kind: EventCData, Row: p.eventRow, Column: p.eventCol, Text: b.String()}
				}
				b.WriteString("]]")
				continue
			}
			b.WriteByte(']')
			continue
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

func (p *Parser) readPIOrXMLDecl() *Event {
	p.advance() // past '?'
	target := p.readName()
	if target == "" {
		return p.fatal(ErrInvalidToken)
	}
	if target == "xml" {
		return p.readXMLDecl()
	}
	return p.readPI(target)
}

func (p *Parser) readPI(target string) *Event {
	p.skipS()
	var b strings.Builder
	for {
		switch p.ch {
		case 0:
			return p.fatal(ErrInvalidToken)
		case '?':
			if p.advance() == '>' {
				p.advance()
				return &Event{Kind: EventPI, Row: p.eventRow, Column: p.eventCol, Target: target, Content: b.String()}
			}
			b.WriteByte('?')
			continue
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

func (p *Parser) readXMLDecl() *Event {
	p.skipS()
	if !p.expectFull("version") {
		return p.fatal(ErrBadXMLDecl)
	}
	if !p.readEq() {
		return p.fatal(ErrBadXMLDecl)
	}
	version, ok := p.readQuotedLiteral()
	if !ok {
		return p.fatal(ErrBadXMLDecl)
	}

	encoding := "utf-8"
	var standalone string

	p.skipS()
	if p.ch == 'e' {
		if !p.expectFull("encoding") {
			return p.fatal(ErrBadXMLDecl)
		}
		if !p.readEq() {
			return p.fatal(ErrBadXMLDecl)
		}
		v, ok := p.readQuotedLiteral()
		if !ok {
			return p.fatal(ErrBadXMLDecl)
		}
		encoding = v
		p.skipS()
	}
	if p.ch == 's' {
		if !p.expectFull("standalone") {
			return p.fatal(ErrBadXMLDecl)
		}
		if !p.readEq() {
			return p.fatal(ErrBadXMLDecl)
		}
		v, ok := p.readQuotedLiteral()
		if !ok {
			return p.fatal(ErrBadXMLDecl)
		}
		standalone = v
		p.skipS()
	}

	if p.ch != '?' || p.advance() != '>' {
		return p.fatal(ErrBadXMLDecl)
	}
	p.advance()

	return &Event{Kind: EventXMLDecl, Row: p.eventRow, Column: p.eventCol, Version: version, Encoding: encoding, Standalone: standalone}
}

// readDoctypeDecl is entered with p.ch holding the 'D' of "<!DOCTYPE".
func (p *Parser) readDoctypeDecl() *Event {
	if !p.expect("OCTYPE") {
		return p.fatal(ErrInvalidToken)
	}
	p.advance()
	p.skipS()

	name := p.readName()
	if name == "" {
		return p.fatal(ErrInvalidToken)
	}
	p.skipS()

	var publicID, systemID string
	switch p.ch {
	case 'S':
		sid, ok := p.readSystemLiteral()
		if !ok {
			return p.fatal(ErrInvalidToken)
		}
		systemID = sid
		p.skipS()
	case 'P':
		pid, sid, ok := p.readPublicLiteral()
		if !ok {
			return p.fatal(ErrInvalidToken)
		}
		publicID, systemID = pid, sid
		p.skipS()
	}

	var intSubset string
	if p.ch == '[' {
		sub, ok := p.readIntSubset()
		if !ok {
			return p.fatal(ErrInvalidToken)
		}
		intSubset = sub
		p.skipS()
	}

	if p.ch != '>' {
		return p.fatal(ErrInvalidToken)
	}
	p.advance()

	if p.doctype != nil {
		return p.fatal(ErrDuplicateDoctype)
	}

	dt, err := dtd.New(publicID, systemID, intSubset)
	if err != nil {
		return p.fatalf(ErrDTD, "%v", err)
	}
	p.doctype = dt

	return &Event{Kind: EventDocType, Row: p.eventRow, Column: p.eventCol, DocTypeName: name, DocType: dt}
}

func (p *Parser) readSystemLiteral() (string, bool) {
	if !p.expectFull("SYSTEM") {
		return "", false
	}
	p.skipS()
	return p.readQuotedLiteral()
}

func (p *Parser) readPublicLiteral() (publicID, systemID string, ok bool) {
	if !p.expectFull("PUBLIC") {
		return "", "", false
	}
	p.skipS()
	publicID, ok = p.readQuotedLiteral()
	if !ok {
		return "", "", false
	}
	p.skipS()
	systemID, ok = p.readQuotedLiteral()
	if !ok {
		return "", "", false
	}
	return publicID, systemID, true
}

// readIntSubset captures the internal subset's literal text, tracking
// quote delimiters so a ']' inside a quoted literal does not end the
// subset early.
func (p *Parser) readIntSubset() (string, bool) {
	p.advance() // past '['
	var b strings.Builder
	var quote byte
	for {
		switch {
		case p.ch == 0:
			return "", false
		case quote != 0:
			if p.ch == quote {
				quote = 0
			}
			b.WriteByte(p.ch)
			p.advance()
		case p.ch == '\'' || p.ch == '"':
			quote = p.ch
			b.WriteByte(p.ch)
			p.advance()
		case p.ch == ']':
			p.advance()
			return b.String(), true
		default:
			b.WriteByte(p.ch)
			p.advance()
		}
	}
}

// GlobalReset discards every interned string across all parsers sharing
// the process-wide interner, mirroring parser_global_reset. It does not
// touch the DTD catalog — see dtd.GlobalReset for that, exactly as
// doctype_global_reset is a distinct function from parser_global_reset in
// the grounding source.
func GlobalReset() {
	intern.GlobalReset()
}
