package dtd

// cursor is a one-character-lookahead reader over a DTD subset's text, with
// a stack of virtual streams for parameter-entity expansion: advance always
// drains the innermost active stream before falling back to the real
// source. Grounded in dtd_move_cursor / dtd_stream_push in
// original_source/xml/doctype.c — unlike the main tokenizer's cursor, this
// one does not track row/column, matching dtd_move_cursor exactly.
type cursor struct {
	src []byte
	pos int
	ch  byte

	streams []streamFrame
}

type streamFrame struct {
	data []byte
	pos  int
}

func newCursor(src []byte) *cursor {
	c := &cursor{src: src}
	c.advance()
	return c
}

func (c *cursor) advance() byte {
	for len(c.streams) > 0 {
		top := len(c.streams) - 1
		f := &c.streams[top]
		if f.pos < len(f.data) {
			b := f.data[f.pos]
			f.pos++
			c.ch = b
			return b
		}
		c.streams = c.streams[:top]
	}
	if c.pos < len(c.src) {
		b := c.src[c.pos]
		c.pos++
		c.ch = b
		return b
	}
	c.ch = 0
	return 0
}

// pushStream makes data the active input: the next advance (called here)
// reads its first byte, and the real source resumes only once data is
// exhausted.
func (c *cursor) pushStream(data []byte) {
	c.streams = append(c.streams, streamFrame{data: data})
	c.advance()
}
