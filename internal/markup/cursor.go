package markup

import "unicode/utf8"

// Span locates a token in the preprocessed input. Raw is the exact text
// consumed.
type Span struct {
	Start int
	End   int
	Raw   string
}

// Len is the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// Cursor walks the remaining input during tokenization. Rules inspect it and
// Consume the prefix they match; a rule that declines must not consume.
type Cursor struct {
	src string
	pos int
}

func newCursor(src string) *Cursor {
	return &Cursor{src: src}
}

// Remaining is the unconsumed input.
func (c *Cursor) Remaining() string { return c.src[c.pos:] }

// Offset is the byte offset of the next unconsumed byte.
func (c *Cursor) Offset() int { return c.pos }

// Done reports whether the input is exhausted.
func (c *Cursor) Done() bool { return c.pos >= len(c.src) }

// Peek returns the span the next n bytes would cover without consuming them.
func (c *Cursor) Peek(n int) Span {
	end := min(c.pos+n, len(c.src))
	return Span{Start: c.pos, End: end, Raw: c.src[c.pos:end]}
}

// Consume advances past the next n bytes and returns their span.
func (c *Cursor) Consume(n int) Span {
	span := c.Peek(n)
	c.pos = span.End
	return span
}

// PrecedingRune returns the rune immediately before the cursor.
func (c *Cursor) PrecedingRune() (rune, bool) {
	if c.pos == 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(c.src[:c.pos])
	return r, true
}
