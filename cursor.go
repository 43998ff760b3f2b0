package xmltok

// streamFrame is a virtual input frame pushed while expanding an entity
// reference. Grounded in the Parser.streams_stack (an Arp of byte buffers)
// in original_source/xml/parser.c: advance always drains the innermost
// active frame before falling back to the real source, and a frame popping
// empty is not end-of-document, just end-of-expansion.
type streamFrame struct {
	data []byte
	pos  int
}

// advance is move_cursor: it returns the next byte and leaves it in p.ch.
// Row/column bookkeeping only applies to bytes read from the real source —
// entity-expansion text does not move the reported position, matching the
// grounding source exactly.
func (p *Parser) advance() byte {
	for len(p.streams) > 0 {
		top := len(p.streams) - 1
		f := &p.streams[top]
		if f.pos < len(f.data) {
			b := f.data[f.pos]
			f.pos++
			p.ch = b
			return b
		}
		p.streams = p.streams[:top]
	}

	if p.srcStarted {
		if p.srcPrevNL {
			p.row++
			p.col = 1
			p.srcPrevNL = false
		} else {
			p.col++
		}
	} else {
		p.srcStarted = true
	}

	b := p.src.nextByte()
	p.ch = b
	if b == '\n' {
		p.srcPrevNL = true
	}
	return b
}

// pushStream makes data the active input: the next byte read comes from
// data, and the real source resumes (with its position untouched) once
// data is exhausted. Grounded in parser_stream_push.
func (p *Parser) pushStream(data []byte) {
	p.streams = append(p.streams, streamFrame{data: data})
	p.advance()
}
