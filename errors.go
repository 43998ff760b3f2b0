package xmltok

import "fmt"

// ErrorKind classifies a fatal parse error. Grounded in the event-type enum
// of original_source/xml/parser.h (XML_ERROR's sub-cases) and the error
// message constants used throughout original_source/xml/parser.c
// (BAD_XML_DECL, INVALID_TOKEN, MISSING, BAD_ENTITY, BAD_DTD, DUP_DOCTYPE,
// INVALID_NAMESPACE).
type ErrorKind int

const (
	ErrInvalidToken ErrorKind = iota
	ErrBadXMLDecl
	ErrBadEntity
	ErrMismatchedTag
	ErrMissingEndTag
	ErrInvalidNamespace
	ErrDuplicateDoctype
	ErrDTD
)

var errorMessages = map[ErrorKind]string{
	ErrInvalidToken:     "not well-formed (invalid token)",
	ErrBadXMLDecl:       "XML declaration not well-formed",
	ErrBadEntity:        "error parsing entity reference",
	ErrMismatchedTag:    "not well-formed (invalid token)",
	ErrMissingEndTag:    "expected end tag is missing",
	ErrInvalidNamespace: "invalid namespace",
	ErrDuplicateDoctype: "a document can only have one doctype",
	ErrDTD:              "error during parsing the DTD",
}

// Error is the payload of an EventError event: a description plus the
// row/column where the fault was detected. It implements the error
// interface so a *Error can also be used wherever an error value is expected.
type Error struct {
	Kind        ErrorKind
	Description string
	Row, Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)", e.Description, e.Row, e.Column)
}

func newError(kind ErrorKind, row, col int) *Error {
	return &Error{Kind: kind, Description: errorMessages[kind], Row: row, Column: col}
}

func newErrorf(kind ErrorKind, row, col int, format string, args ...any) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...), Row: row, Column: col}
}
