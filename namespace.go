package xmltok

import "github.com/hforge/goxml/internal/intern"

// nsFrame is one binding on the namespace stack: prefix is an interned
// Symbol (a bounded, textually-occurring set of names, worth interning for
// the O(depth) linear search below); uri is a plain string, since URIs are
// unbounded user data and are never run through the global interner. See
// DESIGN.md for why this departs from the Data Model's "uri: intern"
// shorthand, which the original C's own Namespace.uri field (a per-parser
// GStringChunk pointer, not an HStrTree handle) does not actually follow
// either.
type nsFrame struct {
	prefix Symbol
	uri    string
}

// tagFrame is one entry on the open-element stack: the resolved element
// URI/name plus how many namespace bindings this start tag pushed, so
// end-tag processing can pop exactly that many off the namespace stack.
// Grounded in the Tag struct pushed by parser_read_STag in
// original_source/xml/parser.c.
type tagFrame struct {
	uri     string
	name    Symbol
	nsCount int
}

// pushNamespace records a new binding. An empty prefix sets the default
// namespace, mirroring parser_push_namespace's special case for
// intern_empty.
func (p *Parser) pushNamespace(prefix Symbol, uri string) {
	p.nsStack = append(p.nsStack, nsFrame{prefix: prefix, uri: uri})
	if prefix == intern.Empty {
		p.defaultNS = uri
	}
}

// lookupNamespace searches the namespace stack top-down for prefix,
// mirroring parser_search_namespace's linear scan (namespace scope depth
// is small and bounded by element nesting, so linear search is the right
// tool here, exactly as the grounding source uses it).
func (p *Parser) lookupNamespace(prefix Symbol) (string, bool) {
	for i := len(p.nsStack) - 1; i >= 0; i-- {
		if p.nsStack[i].prefix == prefix {
			return p.nsStack[i].uri, true
		}
	}
	return "", false
}

// popNamespaces removes the most recently pushed n bindings and recomputes
// the default namespace from what remains, mirroring the end-tag and
// self-closing-tag cleanup in parser_read_STag / parser_read_ETag.
func (p *Parser) popNamespaces(n int) {
	p.nsStack = p.nsStack[:len(p.nsStack)-n]
	p.defaultNS = ""
	for i := len(p.nsStack) - 1; i >= 0; i-- {
		if p.nsStack[i].prefix == intern.Empty {
			p.defaultNS = p.nsStack[i].uri
			break
		}
	}
}
