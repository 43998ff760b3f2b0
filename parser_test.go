package xmltok

import (
	"strings"
	"testing"
)

// =============================================================================
// TEST UTILITIES
// =============================================================================

// parseAll drives p to completion and returns every event up to and
// including EventEndDocument or EventError.
func parseAll(t *testing.T, xml string) []*Event {
	t.Helper()
	p := New([]byte(xml))
	var events []*Event
	for {
		ev := p.Next()
		events = append(events, ev)
		if ev.Kind == EventEndDocument || ev.Kind == EventError {
			return events
		}
	}
}

func findStart(t *testing.T, events []*Event, name string) *Event {
	t.Helper()
	for _, ev := range events {
		if ev.Kind == EventStartElement && *ev.Name == name {
			return ev
		}
	}
	t.Fatalf("no start element %q found", name)
	return nil
}

func lastErr(events []*Event) *Event {
	for _, ev := range events {
		if ev.Kind == EventError {
			return ev
		}
	}
	return nil
}

// =============================================================================
// BASIC WELL-FORMEDNESS
// =============================================================================

func TestWellFormedRoundTrip(t *testing.T) {
	xml := `<root><item>hello</item></root>`
	events := parseAll(t, xml)

	root := findStart(t, events, "root")
	if root.URI != "" {
		t.Errorf("expected empty URI for root, got %q", root.URI)
	}

	item := findStart(t, events, "item")
	if *item.Name != "item" {
		t.Errorf("expected name 'item', got %q", *item.Name)
	}

	if err := lastErr(events); err != nil {
		t.Fatalf("unexpected error: %v", err.Err)
	}
	if events[len(events)-1].Kind != EventEndDocument {
		t.Errorf("expected EventEndDocument as last event, got %v", events[len(events)-1].Kind)
	}
}

func TestEmptyElement(t *testing.T) {
	events := parseAll(t, `<root><item></item></root>`)
	if lastErr(events) != nil {
		t.Fatalf("unexpected error: %v", lastErr(events).Err)
	}
	var sawText bool
	for _, ev := range events {
		if ev.Kind == EventText && ev.Text != "" {
			sawText = true
		}
	}
	if sawText {
		t.Errorf("expected no non-empty text events")
	}
}

func TestSelfClosingElement(t *testing.T) {
	events := parseAll(t, `<root><item/></root>`)
	if lastErr(events) != nil {
		t.Fatalf("unexpected error: %v", lastErr(events).Err)
	}
	var kinds []EventKind
	for _, ev := range events {
		if ev.Kind == EventStartElement || ev.Kind == EventEndElement {
			kinds = append(kinds, ev.Kind)
		}
	}
	want := []EventKind{EventStartElement, EventStartElement, EventEndElement, EventEndElement}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tag events, got %d (%v)", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d: expected %v, got %v", i, want[i], kinds[i])
		}
	}
}

func TestMismatchedTagIsError(t *testing.T) {
	events := parseAll(t, `<root><item></other></root>`)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrMismatchedTag {
		t.Errorf("expected ErrMismatchedTag, got %v", ev.Err.Kind)
	}
}

func TestMissingEndTagIsError(t *testing.T) {
	events := parseAll(t, `<root><item></item>`)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrMissingEndTag {
		t.Errorf("expected ErrMissingEndTag, got %v", ev.Err.Kind)
	}
}

// =============================================================================
// POSITIONING
// =============================================================================

func TestFirstByteIsRowOneColumnOne(t *testing.T) {
	events := parseAll(t, `<root/>`)
	start := findStart(t, events, "root")
	if start.Row != 1 || start.Column != 1 {
		t.Errorf("expected row 1, column 1 for the first byte; got row %d column %d", start.Row, start.Column)
	}
}

func TestRowAdvancesAcrossNewlines(t *testing.T) {
	xml := "<root>\n  <item/>\n</root>"
	events := parseAll(t, xml)
	item := findStart(t, events, "item")
	if item.Row != 2 {
		t.Errorf("expected item on row 2, got row %d", item.Row)
	}
}

// =============================================================================
// NAMESPACES
// =============================================================================

func TestDefaultNamespaceAppliesToUnprefixedElements(t *testing.T) {
	xml := `<root xmlns="urn:example"><item/></root>`
	events := parseAll(t, xml)

	root := findStart(t, events, "root")
	if root.URI != "urn:example" {
		t.Errorf("expected root URI 'urn:example', got %q", root.URI)
	}
	item := findStart(t, events, "item")
	if item.URI != "urn:example" {
		t.Errorf("expected item URI 'urn:example', got %q", item.URI)
	}
}

func TestUnprefixedAttributeNeverInheritsDefaultNamespace(t *testing.T) {
	xml := `<root xmlns="urn:example" attr="v"/>`
	events := parseAll(t, xml)
	root := findStart(t, events, "root")
	if len(root.Attributes) != 2 {
		t.Fatalf("expected 2 attributes (xmlns + attr), got %d", len(root.Attributes))
	}
	for _, a := range root.Attributes {
		if *a.Name == "attr" && a.URI != "" {
			t.Errorf("expected unprefixed attribute to have empty URI, got %q", a.URI)
		}
	}
}

// TestXmlnsPrefixedAttributeHasEmptyURI reproduces §8's worked example: an
// xmlns:p declaration attribute itself is reported with an empty URI, even
// though its own "xmlns" prefix is bound (to the reserved xmlns namespace)
// by the built-in pre-registration. See DESIGN.md.
func TestXmlnsPrefixedAttributeHasEmptyURI(t *testing.T) {
	xml := `<root xmlns:p="urn:p"/>`
	events := parseAll(t, xml)
	root := findStart(t, events, "root")
	found := false
	for _, a := range root.Attributes {
		if *a.Name == "p" {
			found = true
			if a.URI != "" {
				t.Errorf("expected xmlns:p declaration attribute to have empty URI, got %q", a.URI)
			}
		}
	}
	if !found {
		t.Fatal("expected to find the p attribute from xmlns:p")
	}
}

func TestPrefixedElementResolvesThroughNamespaceStack(t *testing.T) {
	xml := `<a:root xmlns:a="urn:a"><a:item/></a:root>`
	events := parseAll(t, xml)
	root := findStart(t, events, "root")
	if root.URI != "urn:a" {
		t.Errorf("expected root URI 'urn:a', got %q", root.URI)
	}
	item := findStart(t, events, "item")
	if item.URI != "urn:a" {
		t.Errorf("expected item URI 'urn:a', got %q", item.URI)
	}
}

func TestUnboundPrefixIsInvalidNamespace(t *testing.T) {
	events := parseAll(t, `<a:root/>`)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrInvalidNamespace {
		t.Errorf("expected ErrInvalidNamespace, got %v", ev.Err.Kind)
	}
}

func TestNamespaceScopeEndsWithElement(t *testing.T) {
	xml := `<root><a xmlns:p="urn:p"><p:child/></a><p:child/></root>`
	events := parseAll(t, xml)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error once p's scope has ended")
	}
	if ev.Err.Kind != ErrInvalidNamespace {
		t.Errorf("expected ErrInvalidNamespace once out of scope, got %v", ev.Err.Kind)
	}
}

// =============================================================================
// INTERNING
// =============================================================================

func TestSymbolsAreInternedAcrossOccurrences(t *testing.T) {
	events := parseAll(t, `<item><item/></item>`)
	var names []Symbol
	for _, ev := range events {
		if ev.Kind == EventStartElement {
			names = append(names, ev.Name)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 start elements, got %d", len(names))
	}
	if names[0] != names[1] {
		t.Errorf("expected both 'item' symbols to share the same pointer")
	}
}

// =============================================================================
// ENTITIES
// =============================================================================

func TestPredefinedEntitiesExpand(t *testing.T) {
	events := parseAll(t, `<root>&lt;&amp;&gt;&apos;&quot;</root>`)
	var text strings.Builder
	for _, ev := range events {
		if ev.Kind == EventText {
			text.WriteString(ev.Text)
		}
	}
	if got, want := text.String(), `<&>'"`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCharacterReferencesExpandDecimalAndHex(t *testing.T) {
	events := parseAll(t, `<root>&#65;&#x42;</root>`)
	var text strings.Builder
	for _, ev := range events {
		if ev.Kind == EventText {
			text.WriteString(ev.Text)
		}
	}
	if got, want := text.String(), "AB"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestUndefinedEntityIsBadEntity(t *testing.T) {
	events := parseAll(t, `<root>&bogus;</root>`)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrBadEntity {
		t.Errorf("expected ErrBadEntity, got %v", ev.Err.Kind)
	}
}

// =============================================================================
// COMMENTS, CDATA, PI, XMLDECL
// =============================================================================

func TestCommentIsReported(t *testing.T) {
	events := parseAll(t, `<root><!-- a comment --></root>`)
	var found bool
	for _, ev := range events {
		if ev.Kind == EventComment {
			found = true
			if ev.Text != " a comment " {
				t.Errorf("expected ' a comment ', got %q", ev.Text)
			}
		}
	}
	if !found {
		t.Fatal("expected a comment event")
	}
}

func TestCommentWithDoubleDashIsInvalidToken(t *testing.T) {
	events := parseAll(t, `<root><!-- bad -- comment --></root>`)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", ev.Err.Kind)
	}
}

func TestCDataIsNotEntityExpanded(t *testing.T) {
	events := parseAll(t, `<root><![CDATA[<not>&parsed</not>]]></root>`)
	var found bool
	for _, ev := range events {
		if ev.Kind == EventCData {
			found = true
			if ev.Text != "<not>&parsed</not>" {
				t.Errorf("expected literal CDATA text, got %q", ev.Text)
			}
		}
	}
	if !found {
		t.Fatal("expected a CDATA event")
	}
}

func TestProcessingInstruction(t *testing.T) {
	events := parseAll(t, `<root><?target some content?></root>`)
	var found bool
	for _, ev := range events {
		if ev.Kind == EventPI {
			found = true
			if ev.Target != "target" || ev.Content != "some content" {
				t.Errorf("expected target=%q content=%q, got target=%q content=%q", "target", "some content", ev.Target, ev.Content)
			}
		}
	}
	if !found {
		t.Fatal("expected a PI event")
	}
}

func TestXMLDeclDefaultsEncodingToUTF8(t *testing.T) {
	events := parseAll(t, `<?xml version="1.0"?><root/>`)
	if events[0].Kind != EventXMLDecl {
		t.Fatalf("expected first event to be EventXMLDecl, got %v", events[0].Kind)
	}
	if events[0].Version != "1.0" {
		t.Errorf("expected version 1.0, got %q", events[0].Version)
	}
	if events[0].Encoding != "utf-8" {
		t.Errorf("expected default encoding utf-8, got %q", events[0].Encoding)
	}
}

func TestXMLDeclWithEncodingAndStandalone(t *testing.T) {
	events := parseAll(t, `<?xml version="1.0" encoding="ISO-8859-1" standalone="yes"?><root/>`)
	ev := events[0]
	if ev.Encoding != "ISO-8859-1" {
		t.Errorf("expected encoding ISO-8859-1, got %q", ev.Encoding)
	}
	if ev.Standalone != "yes" {
		t.Errorf("expected standalone yes, got %q", ev.Standalone)
	}
}

// =============================================================================
// UTF-8 BOM
// =============================================================================

func TestUTF8BOMIsNeutral(t *testing.T) {
	withBOM := "\xEF\xBB\xBF<root/>"
	events := parseAll(t, withBOM)
	start := findStart(t, events, "root")
	if start.Row != 1 || start.Column != 1 {
		t.Errorf("expected the element after a BOM to still be row 1 column 1, got row %d column %d", start.Row, start.Column)
	}
}

// =============================================================================
// DOCTYPE / DTD
// =============================================================================

func TestDoctypeWithInternalSubsetDefinesEntity(t *testing.T) {
	xml := `<!DOCTYPE root [<!ENTITY greeting "hello">]><root>&greeting;</root>`
	events := parseAll(t, xml)
	if lastErr(events) != nil {
		t.Fatalf("unexpected error: %v", lastErr(events).Err)
	}
	var text strings.Builder
	for _, ev := range events {
		if ev.Kind == EventText {
			text.WriteString(ev.Text)
		}
	}
	if text.String() != "hello" {
		t.Errorf("expected entity to expand to 'hello', got %q", text.String())
	}
}

func TestDuplicateDoctypeIsError(t *testing.T) {
	xml := `<!DOCTYPE root [<!ENTITY a "x">]><!DOCTYPE root [<!ENTITY b "y">]><root/>`
	events := parseAll(t, xml)
	ev := lastErr(events)
	if ev == nil {
		t.Fatal("expected an error event")
	}
	if ev.Err.Kind != ErrDuplicateDoctype {
		t.Errorf("expected ErrDuplicateDoctype, got %v", ev.Err.Kind)
	}
}

// =============================================================================
// WithNamespace OPTION
// =============================================================================

func TestWithNamespaceOptionPreBindsPrefix(t *testing.T) {
	p := New([]byte(`<g:root/>`), WithNamespace("g", "urn:pre-bound"))
	ev := p.Next()
	if ev.Kind != EventStartElement {
		t.Fatalf("expected EventStartElement, got %v (%v)", ev.Kind, ev.Err)
	}
	if ev.URI != "urn:pre-bound" {
		t.Errorf("expected URI 'urn:pre-bound', got %q", ev.URI)
	}
}
