package xmltok

import "github.com/hforge/goxml/dtd"

// EventKind identifies which fields of an Event are populated. Grounded in
// the XML_DECL..XML_ERROR enum of original_source/xml/parser.h.
type EventKind int

const (
	EventXMLDecl EventKind = iota
	EventDocType
	EventStartElement
	EventEndElement
	EventText
	EventComment
	EventPI
	EventCData
	EventEndDocument
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventXMLDecl:
		return "XMLDecl"
	case EventDocType:
		return "DocType"
	case EventStartElement:
		return "StartElement"
	case EventEndElement:
		return "EndElement"
	case EventText:
		return "Text"
	case EventComment:
		return "Comment"
	case EventPI:
		return "PI"
	case EventCData:
		return "CData"
	case EventEndDocument:
		return "EndDocument"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Symbol is an interned handle: two Symbols compare equal (by pointer) iff
// the strings they name are equal. Element/attribute local names and
// namespace prefixes are Symbols; namespace URIs are not (see DESIGN.md —
// URIs are unbounded, user-supplied data and would defeat the interner's
// bounded, process-lifetime trie).
type Symbol = *string

// Attribute is one qualified attribute of a start-element event. URI is
// "" when the attribute carries no namespace (including when it is an
// xmlns/xmlns:* declaration itself, or an unprefixed attribute — neither
// is placed in a namespace; see §9's resolved Open Question).
type Attribute struct {
	URI   string
	Name  Symbol
	Value string
}

// Event is a tagged union over every event kind Next can produce. Only the
// fields relevant to Kind are meaningful; Row/Column are always set to the
// position of the event's first byte.
type Event struct {
	Kind   EventKind
	Row    int
	Column int

	// EventXMLDecl
	Version    string
	Encoding   string
	Standalone string

	// EventDocType
	DocTypeName string
	DocType     *dtd.DocType

	// EventStartElement / EventEndElement
	URI        string
	Name       Symbol
	Attributes []Attribute

	// EventText / EventComment / EventCData
	Text string

	// EventPI
	Target  string
	Content string

	// EventError
	Err *Error
}
