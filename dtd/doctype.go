// Package dtd implements DTD ingestion: locating an external subset by
// PUBLIC/SYSTEM identifier through a process-wide catalog, and parsing
// both the external and internal subsets' <!ENTITY> declarations into a
// single general-entity table.
//
// Grounded in original_source/xml/doctype.c (doctype_new, doctype_read_
// external_dtd, doctype_read_internal_dtd, dtd_parse and friends) and its
// header, original_source/xml/parser.h.
package dtd

import (
	"fmt"
	"os"
	"strings"

	"github.com/hforge/goxml/internal/catalog"
)

// DocType is the result of ingesting a <!DOCTYPE ...> declaration: its
// literal identifiers plus the general-entity table built from the
// external subset (if located) followed by the internal subset, in that
// order — a name declared in both wins with the internal subset's value
// (SPEC_FULL.md §12 item 4).
type DocType struct {
	PublicID  string
	SystemID  string
	IntSubset string

	entities map[string]string
}

// New resolves and parses a DOCTYPE declaration's subsets, exactly as
// doctype_new does: if either identifier is present, the external subset is
// located via the catalog and parsed first; then, if intSubset is
// non-empty, it is parsed into the same entity table.
func New(publicID, systemID, intSubset string) (*DocType, error) {
	dt := &DocType{
		PublicID:  publicID,
		SystemID:  systemID,
		IntSubset: intSubset,
		entities:  map[string]string{},
	}

	if publicID != "" || systemID != "" {
		text, err := loadExternal(publicID, systemID)
		if err != nil {
			return nil, err
		}
		if err := parseSubset(dt, text); err != nil {
			return nil, err
		}
	}

	if intSubset != "" {
		if err := parseSubset(dt, intSubset); err != nil {
			return nil, err
		}
	}

	return dt, nil
}

// EntityValue looks up a general entity declared by either subset.
func (dt *DocType) EntityValue(name string) (string, bool) {
	v, ok := dt.entities[name]
	return v, ok
}

// String renders the DOCTYPE's canonical textual form, mirroring
// doctype_to_str: `PUBLIC "pubid" "sysid"` or `SYSTEM "sysid"`, optionally
// followed by `[intSubset]`.
func (dt *DocType) String() string {
	var b strings.Builder
	switch {
	case dt.PublicID != "":
		fmt.Fprintf(&b, "PUBLIC %q %q", dt.PublicID, dt.SystemID)
	case dt.SystemID != "":
		fmt.Fprintf(&b, "SYSTEM %q", dt.SystemID)
	}
	if dt.IntSubset != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('[')
		b.WriteString(dt.IntSubset)
		b.WriteByte(']')
	}
	return b.String()
}

// RegisterDTD records filename as the source for an external DTD reachable
// by urn and/or uri, in the process-wide catalog. Grounded in
// doctype_register_dtd — this port follows that function's actual
// implementation parameter order (filename first), not the apparently
// stale prototype in parser.h's doctype_register_dtd(urn, filename); see
// DESIGN.md.
func RegisterDTD(filename, urn, uri string) {
	catalog.Default.Register(filename, urn, uri)
}

// GlobalReset clears the process-wide DTD catalog, mirroring
// doctype_global_reset.
func GlobalReset() {
	catalog.Default.Reset()
}

func loadExternal(publicID, systemID string) (string, error) {
	var filename, urn string
	if publicID != "" {
		urn = ComputeURN(publicID)
		if f, ok := catalog.Default.LookupURN(urn); ok {
			filename = f
		}
	}
	if filename == "" && systemID != "" {
		if f, ok := catalog.Default.LookupURI(systemID); ok {
			filename = f
		}
	}
	if filename == "" {
		pub := "None"
		if publicID != "" {
			pub = fmt.Sprintf("%s (%s)", publicID, urn)
		}
		sys := "None"
		if systemID != "" {
			sys = systemID
		}
		return "", fmt.Errorf("'%s|%s' not found", pub, sys)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("error opening file (%s): %w", filename, err)
	}
	return string(data), nil
}

func loadURN(urn string) (string, error) {
	filename, ok := catalog.Default.LookupURN(urn)
	if !ok {
		return "", fmt.Errorf("DTD error: urn %q not found in catalog", urn)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("DTD error: opening file (%s): %w", filename, err)
	}
	return string(data), nil
}
