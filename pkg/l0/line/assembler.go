package line

// IsTerminator reports whether c ends a line.
func IsTerminator(c byte) bool {
	return c == '\n' || c == '\r'
}

// Assembler accumulates bytes into lines.
// The zero value is ready to use.
type Assembler struct {
	buf     Buffer
	dropped int
}

// Feed consumes one byte. When c is a terminator the current content
// is returned with ok set, even if it is empty, and the buffer is reset.
// Bytes arriving while the buffer is full are dropped.
func (a *Assembler) Feed(c byte) (line string, ok bool) {
	if IsTerminator(c) {
		line = a.buf.String()
		a.Reset()
		return line, true
	}
	if !a.buf.Append(c) {
		a.dropped++
	}
	return "", false
}

// Pending returns the number of bytes waiting for a terminator.
func (a *Assembler) Pending() int {
	return a.buf.Len()
}

// Dropped returns how many bytes were discarded since the last line.
func (a *Assembler) Dropped() int {
	return a.dropped
}

// Reset discards any partial line.
func (a *Assembler) Reset() {
	a.buf.Reset()
	a.dropped = 0
}
